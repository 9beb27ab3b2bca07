package memory

import (
	"context"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// StaticLoader is a content loader backed by in-process slices (useful for tests/demos).
type StaticLoader struct {
	lessons []domain.Lesson
	quizzes []domain.Quiz
}

func NewStaticLoader(lessons []domain.Lesson, quizzes []domain.Quiz) *StaticLoader {
	return &StaticLoader{lessons: lessons, quizzes: quizzes}
}

func (l *StaticLoader) LoadLessons(context.Context) ([]domain.Lesson, error) {
	return append([]domain.Lesson(nil), l.lessons...), nil
}

func (l *StaticLoader) LoadQuizzes(context.Context) ([]domain.Quiz, error) {
	return append([]domain.Quiz(nil), l.quizzes...), nil
}
