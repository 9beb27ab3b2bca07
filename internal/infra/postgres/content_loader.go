package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/romaisa914/lingo-translator/internal/domain"
)

// ContentLoader loads lesson and quiz JSONB documents from Postgres, ordered by id.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadLessons(ctx context.Context) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	err := l.scan(ctx, `SELECT id, data FROM lessons ORDER BY id`, func(id int, raw []byte) error {
		var lesson domain.Lesson
		if err := json.Unmarshal(raw, &lesson); err != nil {
			return fmt.Errorf("unmarshal lesson %d: %w", id, err)
		}
		lesson.ID = id
		lessons = append(lessons, lesson)
		return nil
	})
	if err != nil {
		return nil, domain.DataLoadError("postgres lessons", err)
	}
	return lessons, nil
}

func (l *ContentLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := l.scan(ctx, `SELECT id, data FROM quizzes ORDER BY id`, func(id int, raw []byte) error {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return fmt.Errorf("unmarshal quiz %d: %w", id, err)
		}
		quiz.ID = id
		quizzes = append(quizzes, quiz)
		return nil
	})
	if err != nil {
		return nil, domain.DataLoadError("postgres quizzes", err)
	}
	return quizzes, nil
}

func (l *ContentLoader) scan(ctx context.Context, query string, each func(id int, raw []byte) error) error {
	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := each(id, raw); err != nil {
			return err
		}
	}
	return rows.Err()
}
