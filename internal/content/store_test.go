package content

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

func TestStoreLoadsOnce(t *testing.T) {
	loader := &countingLoader{lessons: sampleLessons(), quizzes: sampleQuizzes()}
	store := NewStore(loader)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Lessons(ctx); err != nil {
				t.Errorf("lessons: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := store.Quizzes(ctx); err != nil {
		t.Fatalf("quizzes: %v", err)
	}
	if loader.callCount() != 1 {
		t.Fatalf("expected loader once, got %d", loader.callCount())
	}
}

func TestStoreFindReportsAbsence(t *testing.T) {
	store := NewStore(&countingLoader{lessons: sampleLessons(), quizzes: sampleQuizzes()})
	ctx := context.Background()

	lesson, ok, err := store.FindLesson(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected lesson 1, ok=%v err=%v", ok, err)
	}
	if lesson.Title != "Greetings" {
		t.Fatalf("unexpected lesson %+v", lesson)
	}

	if _, ok, err := store.FindLesson(ctx, 99); ok || err != nil {
		t.Fatalf("expected absent lesson, ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.FindQuiz(ctx, 99); ok || err != nil {
		t.Fatalf("expected absent quiz, ok=%v err=%v", ok, err)
	}

	ids, err := store.LessonIDs(ctx)
	if err != nil {
		t.Fatalf("lesson ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestStoreDoesNotCacheFailures(t *testing.T) {
	loader := &countingLoader{err: errors.New("disk gone")}
	store := NewStore(loader)

	if err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	loader.err = nil
	loader.lessons = sampleLessons()
	loader.quizzes = sampleQuizzes()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}

func TestValidateRejectsMalformedContent(t *testing.T) {
	cases := map[string]struct {
		lessons []domain.Lesson
		quizzes []domain.Quiz
	}{
		"duplicate lesson": {
			lessons: append(sampleLessons(), sampleLessons()[0]),
		},
		"missing title": {
			lessons: []domain.Lesson{{ID: 3, Content: []domain.TermPair{{Source: "a", Target: "b"}}}},
		},
		"empty questions": {
			quizzes: []domain.Quiz{{ID: 1, Title: "Empty"}},
		},
		"duplicate quiz": {
			quizzes: append(sampleQuizzes(), sampleQuizzes()[0]),
		},
		"unknown kind": {
			quizzes: []domain.Quiz{{ID: 1, Title: "Q", Questions: []domain.Question{
				{Prompt: "?", Kind: "essay", CorrectAnswer: "x"},
			}}},
		},
		"answer not an option": {
			quizzes: []domain.Quiz{{ID: 1, Title: "Q", Questions: []domain.Question{
				{Prompt: "?", Kind: domain.KindMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "C"},
			}}},
		},
		"dangling lesson link": {
			lessons: sampleLessons(),
			quizzes: []domain.Quiz{{ID: 1, LessonID: intPtr(99), Title: "Q", Questions: sampleQuizzes()[0].Questions}},
		},
		"bad true false": {
			quizzes: []domain.Quiz{{ID: 1, Title: "Q", Questions: []domain.Question{
				{Prompt: "?", Kind: domain.KindTrueFalse, CorrectAnswer: "maybe"},
			}}},
		},
	}

	for name, tc := range cases {
		err := Validate(tc.lessons, tc.quizzes)
		if !errors.Is(err, domain.ErrDataLoad) {
			t.Fatalf("%s: expected data load error, got %v", name, err)
		}
	}

	if err := Validate(sampleLessons(), sampleQuizzes()); err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}
}

type countingLoader struct {
	mu      sync.Mutex
	calls   int
	lessons []domain.Lesson
	quizzes []domain.Quiz
	err     error
}

func (l *countingLoader) LoadLessons(context.Context) ([]domain.Lesson, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.lessons, nil
}

func (l *countingLoader) LoadQuizzes(context.Context) ([]domain.Quiz, error) {
	return l.quizzes, nil
}

func (l *countingLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleLessons() []domain.Lesson {
	return []domain.Lesson{
		{ID: 1, Title: "Greetings", Content: []domain.TermPair{{Source: "Hallo", Target: "Hello"}}},
		{ID: 2, Title: "Numbers", Content: []domain.TermPair{{Source: "eins", Target: "one"}}},
	}
}

func sampleQuizzes() []domain.Quiz {
	lessonID := 1
	return []domain.Quiz{
		{
			ID:       1,
			LessonID: &lessonID,
			Title:    "Greetings quiz",
			Questions: []domain.Question{
				{Prompt: "Hallo means?", Kind: domain.KindMultipleChoice, Options: []string{"Hello", "Bye"}, CorrectAnswer: "Hello"},
				{Prompt: "Translate: house", Kind: domain.KindFillIn, CorrectAnswer: "Haus"},
				{Prompt: "Danke means thanks", Kind: domain.KindTrueFalse, CorrectAnswer: "true"},
			},
		},
	}
}

func intPtr(v int) *int { return &v }
