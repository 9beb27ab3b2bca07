package integration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/romaisa914/lingo-translator/internal/app"
	"github.com/romaisa914/lingo-translator/internal/chat"
	"github.com/romaisa914/lingo-translator/internal/content"
	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/romaisa914/lingo-translator/internal/infra/postgres"
	infraredis "github.com/romaisa914/lingo-translator/internal/infra/redis"
	"github.com/romaisa914/lingo-translator/internal/translate"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestQuizAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedContent(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	loader := infraredis.NewCachedLoader(redisClient, postgres.NewContentLoader(pool), 5*time.Minute)
	store := content.NewStore(loader)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load content: %v", err)
	}

	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewService(store, sessions, translate.NewGateway(translate.Config{}, nil, log), chat.NewRuleBased(nil), app.Options{Logger: log})

	if _, err := service.StartQuiz(ctx, "s1", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, "s1", 0, "Hello"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view, err := service.Advance(ctx, "s1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if view.State != app.StateCompleted || view.Score != 1 {
		t.Fatalf("expected completed 1/1, got %+v", view)
	}

	summary, err := service.ProgressSummary(ctx, "s1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if summary.Completed != 1 || summary.Total != 2 {
		t.Fatalf("expected linked lesson completed, got %+v", summary)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "lingo", "POSTGRES_PASSWORD": "lingopass", "POSTGRES_DB": "lingodb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://lingo:lingopass@%s:%s/lingodb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedContent(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	db := postgres.OpenBun(dsn)
	defer db.Close()

	// Postgres may accept connections a moment after the port opens.
	var err error
	for i := 0; i < 20; i++ {
		if _, err = postgres.Migrate(ctx, db); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	lessons, quizzes := sampleContent()
	if err := postgres.Seed(ctx, db, lessons, quizzes); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func sampleContent() ([]domain.Lesson, []domain.Quiz) {
	lessonID := 1
	lessons := []domain.Lesson{
		{ID: 1, Title: "Greetings", Content: []domain.TermPair{{Source: "Hallo", Target: "Hello"}}},
		{ID: 2, Title: "Home", Content: []domain.TermPair{{Source: "Haus", Target: "house"}}},
	}
	quizzes := []domain.Quiz{{
		ID:       1,
		LessonID: &lessonID,
		Title:    "Greetings quiz",
		Questions: []domain.Question{
			{Prompt: "What does Hallo mean?", Kind: domain.KindMultipleChoice, Options: []string{"Hello", "Bye"}, CorrectAnswer: "Hello"},
		},
	}}
	return lessons, quizzes
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
