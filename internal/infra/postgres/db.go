package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/romaisa914/lingo-translator/internal/infra/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// OpenBun opens a bun handle over pgdriver for schema and seeding work.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies all pending migrations and returns the names it ran.
func Migrate(ctx context.Context, db *bun.DB) ([]string, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrator init: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	names := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		names = append(names, m.Name)
	}
	return names, nil
}

type lessonRow struct {
	bun.BaseModel `bun:"table:lessons"`

	ID   int             `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID   int             `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

// Seed upserts lessons and quizzes in one transaction. Existing rows with the
// same id are overwritten.
func Seed(ctx context.Context, db *bun.DB, lessons []domain.Lesson, quizzes []domain.Quiz) error {
	lessonRows := make([]lessonRow, 0, len(lessons))
	for _, lesson := range lessons {
		raw, err := json.Marshal(lesson)
		if err != nil {
			return fmt.Errorf("marshal lesson %d: %w", lesson.ID, err)
		}
		lessonRows = append(lessonRows, lessonRow{ID: lesson.ID, Data: raw})
	}
	quizRows := make([]quizRow, 0, len(quizzes))
	for _, quiz := range quizzes {
		raw, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz %d: %w", quiz.ID, err)
		}
		quizRows = append(quizRows, quizRow{ID: quiz.ID, Data: raw})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(lessonRows) > 0 {
			if _, err := tx.NewInsert().Model(&lessonRows).
				On("CONFLICT (id) DO UPDATE").
				Set("data = EXCLUDED.data, updated_at = now()").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert lessons: %w", err)
			}
		}
		if len(quizRows) > 0 {
			if _, err := tx.NewInsert().Model(&quizRows).
				On("CONFLICT (id) DO UPDATE").
				Set("data = EXCLUDED.data, updated_at = now()").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert quizzes: %w", err)
			}
		}
		return nil
	})
}
