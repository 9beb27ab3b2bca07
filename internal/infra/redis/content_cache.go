package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/romaisa914/lingo-translator/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches lesson and quiz content from a backing store (e.g. Postgres).
type ContentLoader interface {
	LoadLessons(ctx context.Context) ([]domain.Lesson, error)
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// CachedLoader caches content documents in Redis and falls back to the wrapped
// loader on a miss, so several instances share one database read per ttl.
//
//	lingo:content:lessons -> JSON array of lessons
//	lingo:content:quizzes -> JSON array of quizzes
type CachedLoader struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCachedLoader(client *redis.Client, loader ContentLoader, ttl time.Duration) *CachedLoader {
	return &CachedLoader{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const (
	lessonsKey = "lingo:content:lessons"
	quizzesKey = "lingo:content:quizzes"
)

func (c *CachedLoader) LoadLessons(ctx context.Context) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	err := c.load(ctx, lessonsKey, &lessons, func() (any, error) {
		return c.loader.LoadLessons(ctx)
	})
	return lessons, err
}

func (c *CachedLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := c.load(ctx, quizzesKey, &quizzes, func() (any, error) {
		return c.loader.LoadQuizzes(ctx)
	})
	return quizzes, err
}

// Invalidate drops cached content, e.g. after reseeding the database.
func (c *CachedLoader) Invalidate(ctx context.Context) error {
	return InvalidateContent(ctx, c.client)
}

func InvalidateContent(ctx context.Context, client *redis.Client) error {
	return client.Del(ctx, lessonsKey, quizzesKey).Err()
}

func (c *CachedLoader) load(ctx context.Context, key string, out any, fetch func() (any, error)) error {
	if c.fromCache(ctx, key, out) {
		return nil
	}

	raw, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return raw, nil
		}

		value, err := fetch()
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		// best-effort: a failed write only costs another database read
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return raw, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return domain.DataLoadError(key, err)
	}
	return nil
}

func (c *CachedLoader) fromCache(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *CachedLoader) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
