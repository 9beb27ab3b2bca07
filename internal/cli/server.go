package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romaisa914/lingo-translator/internal/app"
	"github.com/romaisa914/lingo-translator/internal/chat"
	"github.com/romaisa914/lingo-translator/internal/config"
	"github.com/romaisa914/lingo-translator/internal/infra/memory"
	redissession "github.com/romaisa914/lingo-translator/internal/infra/redis"
	"github.com/romaisa914/lingo-translator/internal/translate"
	transport "github.com/romaisa914/lingo-translator/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	backend, err := newContentStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer backend.Close()
	// Content that cannot be loaded is fatal at startup.
	if err := backend.store.Load(ctx); err != nil {
		log.WithError(err).Error("content failed to load")
		return err
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redissession.NewSessionStore(redisClient, config.TTLDuration(cfg.Session.TTL, 2*time.Hour))
	} else {
		sessions = memory.NewSessionStore(config.TTLDuration(cfg.Session.TTL, 2*time.Hour))
	}

	translator := translate.NewGateway(translate.Config{
		Endpoint: cfg.Translate.Endpoint,
		Timeout:  config.TTLDuration(cfg.Translate.Timeout, translate.DefaultTimeout),
	}, nil, log)

	responder := chat.New(chat.Config{
		Mode:         cfg.Chat.Mode,
		Endpoint:     cfg.Chat.Endpoint,
		Model:        cfg.Chat.Model,
		APIKey:       cfg.Chat.APIKey,
		ContextLimit: cfg.Chat.ContextLimit,
		MaxNewTokens: cfg.Chat.MaxNewTokens,
		Timeout:      config.TTLDuration(cfg.Chat.Timeout, 20*time.Second),
	}, log)

	service := app.NewService(backend.store, sessions, translator, responder, app.Options{
		PassRatio:    cfg.Quiz.PassRatio,
		HistoryLimit: cfg.Session.HistoryLimit,
		Logger:       log,
	})

	// Chat generation may take up to the chat timeout.
	writeTimeout := config.TTLDuration(cfg.Chat.Timeout, 20*time.Second) + 10*time.Second
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewHandler(service, log).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting lingo server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
