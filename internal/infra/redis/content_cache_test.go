package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/romaisa914/lingo-translator/internal/infra/memory"
)

func TestCachedLoaderCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{ContentLoader: memory.NewStaticLoader(sampleLessons(), nil)}
	cache := NewCachedLoader(newClient(mr), loader, time.Minute)

	lessons, err := cache.LoadLessons(context.Background())
	if err != nil {
		t.Fatalf("load lessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0].Title != "Greetings" {
		t.Fatalf("unexpected lessons %+v", lessons)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls.Load())
	}
	if !mr.Exists("lingo:content:lessons") {
		t.Fatalf("expected content cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	_, _ = cache.LoadLessons(context.Background())
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls.Load())
	}

	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.LoadLessons(context.Background())
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls.Load())
	}
}

func TestCachedLoaderDoesNotCacheFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewCachedLoader(newClient(mr), failingLoader{}, time.Minute)
	if _, err := cache.LoadQuizzes(context.Background()); !errors.Is(err, domain.ErrDataLoad) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if mr.Exists("lingo:content:quizzes") {
		t.Fatalf("failure must not be cached")
	}
}

type countingLoader struct {
	ContentLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadLessons(ctx context.Context) ([]domain.Lesson, error) {
	l.calls.Add(1)
	return l.ContentLoader.LoadLessons(ctx)
}

type failingLoader struct{}

func (failingLoader) LoadLessons(context.Context) ([]domain.Lesson, error) {
	return nil, domain.DataLoadError("postgres", nil)
}

func (failingLoader) LoadQuizzes(context.Context) ([]domain.Quiz, error) {
	return nil, domain.DataLoadError("postgres", nil)
}

func sampleLessons() []domain.Lesson {
	return []domain.Lesson{
		{ID: 1, Title: "Greetings", Content: []domain.TermPair{{Source: "Hallo", Target: "Hello"}}},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
