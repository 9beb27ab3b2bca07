package cli

import (
	"fmt"

	"github.com/romaisa914/lingo-translator/internal/config"
	"github.com/spf13/cobra"
)

// NewCheckCmd loads and validates content without serving it.
func NewCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate lesson and quiz content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			redisClient := newRedisClient(cfg)
			if redisClient != nil {
				defer redisClient.Close()
			}

			backend, err := newContentStore(ctx, cfg, redisClient, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			lessons, err := backend.store.Lessons(ctx)
			if err != nil {
				return err
			}
			quizzes, err := backend.store.Quizzes(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "content ok: %d lessons, %d quizzes\n", len(lessons), len(quizzes))
			return nil
		},
	}
}
