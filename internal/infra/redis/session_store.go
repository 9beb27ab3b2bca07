package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/romaisa914/lingo-translator/internal/app"
)

// SessionStore keeps workspace snapshots in Redis as JSON values.
// Every read or write pushes the expiry forward, so a session lives for ttl
// after its last request.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (app.WorkspaceSnapshot, bool, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, s.key(sessionID), s.ttl)
	} else {
		cmd = s.client.Get(ctx, s.key(sessionID))
	}
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return app.WorkspaceSnapshot{}, false, nil
	}
	if err != nil {
		return app.WorkspaceSnapshot{}, false, fmt.Errorf("get session: %w", err)
	}

	var snap app.WorkspaceSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return app.WorkspaceSnapshot{}, false, fmt.Errorf("decode session: %w", err)
	}
	return snap, true, nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, snap app.WorkspaceSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "lingo:session:" + sessionID
}
