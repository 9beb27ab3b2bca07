package cli

import (
	"github.com/romaisa914/lingo-translator/internal/config"
	"github.com/romaisa914/lingo-translator/internal/content"
	"github.com/romaisa914/lingo-translator/internal/infra/file"
	"github.com/romaisa914/lingo-translator/internal/infra/postgres"
	rediscache "github.com/romaisa914/lingo-translator/internal/infra/redis"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSeedCmd copies the file content into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Validate file content and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			if err := runMigrations(ctx, cfg, log); err != nil {
				return err
			}

			store := content.NewStore(file.NewContentLoader(cfg.Content.Lessons, cfg.Content.Quizzes))
			lessons, err := store.Lessons(ctx)
			if err != nil {
				return err
			}
			quizzes, err := store.Quizzes(ctx)
			if err != nil {
				return err
			}

			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.Seed(ctx, db, lessons, quizzes); err != nil {
				return err
			}

			if client := newRedisClient(cfg); client != nil {
				defer client.Close()
				if err := rediscache.InvalidateContent(ctx, client); err != nil {
					log.WithError(err).Warn("could not invalidate content cache")
				}
			}
			log.WithFields(logrus.Fields{"lessons": len(lessons), "quizzes": len(quizzes)}).Info("content seeded")
			return nil
		},
	}
}
