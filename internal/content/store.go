package content

import (
	"context"
	"sync"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Loader fetches lesson and quiz content from a backing source (files, Postgres).
type Loader interface {
	LoadLessons(ctx context.Context) ([]domain.Lesson, error)
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// Store serves immutable content. The first successful load is kept for the
// process lifetime; failed loads are not cached.
type Store struct {
	loader Loader
	sf     singleflight.Group

	mu     sync.RWMutex
	loaded *catalog
}

type catalog struct {
	lessons     []domain.Lesson
	quizzes     []domain.Quiz
	lessonIndex map[int]int
	quizIndex   map[int]int
}

func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// Load reads and validates all content. It is idempotent.
func (s *Store) Load(ctx context.Context) error {
	_, err := s.catalog(ctx)
	return err
}

// Lessons returns all lessons in source order.
func (s *Store) Lessons(ctx context.Context) ([]domain.Lesson, error) {
	c, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Lesson(nil), c.lessons...), nil
}

// Quizzes returns all quizzes in source order.
func (s *Store) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	c, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Quiz(nil), c.quizzes...), nil
}

// LessonIDs returns the ids of all known lessons in source order.
func (s *Store) LessonIDs(ctx context.Context) ([]int, error) {
	c, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(c.lessons))
	for _, l := range c.lessons {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

// FindLesson looks a lesson up by id. A missing lesson is reported with ok=false.
func (s *Store) FindLesson(ctx context.Context, id int) (domain.Lesson, bool, error) {
	c, err := s.catalog(ctx)
	if err != nil {
		return domain.Lesson{}, false, err
	}
	i, ok := c.lessonIndex[id]
	if !ok {
		return domain.Lesson{}, false, nil
	}
	return c.lessons[i], true, nil
}

// FindQuiz looks a quiz up by id. A missing quiz is reported with ok=false.
func (s *Store) FindQuiz(ctx context.Context, id int) (domain.Quiz, bool, error) {
	c, err := s.catalog(ctx)
	if err != nil {
		return domain.Quiz{}, false, err
	}
	i, ok := c.quizIndex[id]
	if !ok {
		return domain.Quiz{}, false, nil
	}
	return c.quizzes[i], true, nil
}

func (s *Store) catalog(ctx context.Context) (*catalog, error) {
	s.mu.RLock()
	if s.loaded != nil {
		c := s.loaded
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do("catalog", func() (interface{}, error) {
		s.mu.RLock()
		if s.loaded != nil {
			c := s.loaded
			s.mu.RUnlock()
			return c, nil
		}
		s.mu.RUnlock()

		lessons, err := s.loader.LoadLessons(ctx)
		if err != nil {
			return nil, err
		}
		quizzes, err := s.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		if err := Validate(lessons, quizzes); err != nil {
			return nil, err
		}

		c := &catalog{
			lessons:     lessons,
			quizzes:     quizzes,
			lessonIndex: make(map[int]int, len(lessons)),
			quizIndex:   make(map[int]int, len(quizzes)),
		}
		for i, l := range lessons {
			c.lessonIndex[l.ID] = i
		}
		for i, q := range quizzes {
			c.quizIndex[q.ID] = i
		}

		s.mu.Lock()
		s.loaded = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog), nil
}
