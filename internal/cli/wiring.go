package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/romaisa914/lingo-translator/internal/config"
	"github.com/romaisa914/lingo-translator/internal/content"
	"github.com/romaisa914/lingo-translator/internal/infra/file"
	pgcontent "github.com/romaisa914/lingo-translator/internal/infra/postgres"
	rediscache "github.com/romaisa914/lingo-translator/internal/infra/redis"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Log.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// contentBackend holds the content store and whatever connections it needs.
type contentBackend struct {
	store *content.Store
	pool  *pgxpool.Pool
}

func (b *contentBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// newContentStore builds the content store for the configured source. Postgres
// content is fronted by the Redis cache when Redis is configured.
func newContentStore(ctx context.Context, cfg config.Config, redisClient *redis.Client, log logrus.FieldLogger) (*contentBackend, error) {
	switch cfg.Content.Source {
	case "", "file":
		log.WithFields(logrus.Fields{
			"lessons": cfg.Content.Lessons,
			"quizzes": cfg.Content.Quizzes,
		}).Info("loading content from files")
		return &contentBackend{store: content.NewStore(file.NewContentLoader(cfg.Content.Lessons, cfg.Content.Quizzes))}, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("content source postgres requires postgres.url")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		var loader content.Loader = pgcontent.NewContentLoader(pool)
		if redisClient != nil {
			loader = rediscache.NewCachedLoader(redisClient, loader, config.TTLDuration(cfg.Content.CacheTTL, 10*time.Minute))
		}
		log.Info("loading content from postgres")
		return &contentBackend{store: content.NewStore(loader), pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown content source %q", cfg.Content.Source)
	}
}
