package app

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	s := NewQuizSession(twoQuestionQuiz())

	res, err := s.Submit(0, "B")
	if err != nil {
		t.Fatalf("submit 0: %v", err)
	}
	if !res.Correct || res.Score != 1 || s.State() != StateAwaitingAdvance {
		t.Fatalf("unexpected result %+v state %s", res, s.State())
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance 0: %v", err)
	}
	if s.Feedback() != "" {
		t.Fatalf("expected feedback cleared, got %q", s.Feedback())
	}

	res, err = s.Submit(1, "haus ")
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if !res.Correct || res.Score != 2 {
		t.Fatalf("expected normalized match, got %+v", res)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance 1: %v", err)
	}

	if s.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", s.State())
	}
	if s.Score() != 2 || s.Total() != 2 {
		t.Fatalf("expected 2/2, got %d/%d", s.Score(), s.Total())
	}
	if got := s.View().Summary; got != "Quiz finished! Your score: 2/2" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestQuizSessionWrongAnswerFeedback(t *testing.T) {
	s := NewQuizSession(twoQuestionQuiz())

	res, err := s.Submit(0, "A")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Correct || res.Score != 0 {
		t.Fatalf("expected wrong answer, got %+v", res)
	}
	if res.Feedback != "Wrong! Correct answer: B" {
		t.Fatalf("unexpected feedback %q", res.Feedback)
	}
}

func TestQuizSessionResubmitAdjustsScore(t *testing.T) {
	s := NewQuizSession(twoQuestionQuiz())

	steps := []struct {
		answer string
		score  int
	}{
		{"B", 1},
		{"B", 1}, // same correct answer again is not double-counted
		{"A", 0},
		{"C", 0},
		{"b", 1},
	}
	for i, step := range steps {
		res, err := s.Submit(0, step.answer)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.Score != step.score {
			t.Fatalf("step %d: expected score %d, got %d", i, step.score, res.Score)
		}
		if len(s.Answers()) != 1 {
			t.Fatalf("step %d: expected one answer slot, got %d", i, len(s.Answers()))
		}
	}
}

func TestQuizSessionProtocolViolations(t *testing.T) {
	s := NewQuizSession(twoQuestionQuiz())

	if err := s.Advance(); !errors.Is(err, domain.ErrNotAwaitingAdvance) || !errors.Is(err, domain.ErrProtocolViolation) {
		t.Fatalf("expected advance-before-submit violation, got %v", err)
	}
	if _, err := s.Submit(1, "Haus"); !errors.Is(err, domain.ErrOutOfSequence) || !errors.Is(err, domain.ErrProtocolViolation) {
		t.Fatalf("expected out of sequence, got %v", err)
	}
	if _, err := s.Submit(0, "Z"); !errors.Is(err, domain.ErrUndeclaredOption) {
		t.Fatalf("expected undeclared option, got %v", err)
	}
	if len(s.Answers()) != 0 || s.Score() != 0 {
		t.Fatalf("violations must not change state")
	}

	mustSubmit(t, s, 0, "B")
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := s.Submit(0, "B"); !errors.Is(err, domain.ErrOutOfSequence) {
		t.Fatalf("expected stale index rejected, got %v", err)
	}
	mustSubmit(t, s, 1, "Maus")
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := s.Submit(2, "x"); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected completed, got %v", err)
	}
	if err := s.Advance(); !errors.Is(err, domain.ErrProtocolViolation) {
		t.Fatalf("expected advance after completion rejected, got %v", err)
	}
}

func TestQuizSessionTrueFalse(t *testing.T) {
	s := NewQuizSession(domain.Quiz{ID: 7, Title: "TF", Questions: []domain.Question{
		{Prompt: "Hund means dog", Kind: domain.KindTrueFalse, CorrectAnswer: "true"},
	}})

	if _, err := s.Submit(0, "yes"); !errors.Is(err, domain.ErrUndeclaredOption) {
		t.Fatalf("expected yes rejected, got %v", err)
	}
	res, err := s.Submit(0, " TRUE ")
	if err != nil || !res.Correct {
		t.Fatalf("expected TRUE accepted, res=%+v err=%v", res, err)
	}
}

func TestQuizSessionRestartFromAnyState(t *testing.T) {
	s := NewQuizSession(twoQuestionQuiz())
	mustSubmit(t, s, 0, "B")
	s.Restart()
	if s.State() != StateInProgress || s.Index() != 0 || s.Score() != 0 || len(s.Answers()) != 0 {
		t.Fatalf("restart did not reset: %+v", s.Snapshot())
	}

	mustSubmit(t, s, 0, "B")
	_ = s.Advance()
	mustSubmit(t, s, 1, "Haus")
	_ = s.Advance()
	s.Restart()
	if s.State() != StateInProgress || s.Feedback() != "" {
		t.Fatalf("restart after completion failed: %+v", s.Snapshot())
	}
}

func TestQuizSessionScoreMatchesAnswers(t *testing.T) {
	quiz := twoQuestionQuiz()
	answers := [][]string{{"A", "B", "C"}, {"Haus", "Maus", "haus"}}
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		s := NewQuizSession(quiz)
		for i := range quiz.Questions {
			tries := 1 + rnd.Intn(4)
			for j := 0; j < tries; j++ {
				before := s.Score()
				if _, err := s.Submit(i, answers[i][rnd.Intn(len(answers[i]))]); err != nil {
					t.Fatalf("submit: %v", err)
				}
				if d := s.Score() - before; d < -1 || d > 1 {
					t.Fatalf("score moved by %d on one submit", d)
				}
				checkInvariants(t, s)
			}
			if err := s.Advance(); err != nil {
				t.Fatalf("advance: %v", err)
			}
			checkInvariants(t, s)
		}
		if s.State() != StateCompleted {
			t.Fatalf("expected completion")
		}
	}
}

func TestRestoreQuizSessionRejectsBrokenSnapshots(t *testing.T) {
	quiz := twoQuestionQuiz()
	s := NewQuizSession(quiz)
	mustSubmit(t, s, 0, "B")

	restored, err := RestoreQuizSession(quiz, s.Snapshot())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.State() != StateAwaitingAdvance || restored.Score() != 1 {
		t.Fatalf("unexpected restored session %+v", restored.Snapshot())
	}

	bad := []QuizSnapshot{
		{QuizID: quiz.ID, State: StateInProgress, Index: 1, Answers: nil},
		{QuizID: quiz.ID, State: StateAwaitingAdvance, Index: 0, Score: 2, Answers: []bool{true}},
		{QuizID: quiz.ID, State: StateCompleted, Index: 1, Answers: []bool{true}},
		{QuizID: 99, State: StateInProgress},
		{QuizID: quiz.ID, State: "paused"},
	}
	for i, snap := range bad {
		if _, err := RestoreQuizSession(quiz, snap); !errors.Is(err, domain.ErrProtocolViolation) {
			t.Fatalf("case %d: expected rejection, got %v", i, err)
		}
	}
}

func checkInvariants(t *testing.T, s *QuizSession) {
	t.Helper()
	answers := s.Answers()
	trues := 0
	for _, ok := range answers {
		if ok {
			trues++
		}
	}
	if s.Score() != trues || s.Score() < 0 || s.Score() > s.Total() {
		t.Fatalf("score %d does not match %d correct answers", s.Score(), trues)
	}
	switch s.State() {
	case StateInProgress:
		if len(answers) != s.Index() {
			t.Fatalf("in progress: %d answers at index %d", len(answers), s.Index())
		}
	case StateAwaitingAdvance:
		if len(answers) != s.Index()+1 {
			t.Fatalf("awaiting: %d answers at index %d", len(answers), s.Index())
		}
	case StateCompleted:
		if len(answers) != s.Total() || s.Index() != s.Total() {
			t.Fatalf("completed with %d answers, index %d", len(answers), s.Index())
		}
	}
}

func mustSubmit(t *testing.T, s *QuizSession, index int, answer string) Result {
	t.Helper()
	res, err := s.Submit(index, answer)
	if err != nil {
		t.Fatalf("submit %d %q: %v", index, answer, err)
	}
	return res
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    1,
		Title: "Basics",
		Questions: []domain.Question{
			{Prompt: "Pick B", Kind: domain.KindMultipleChoice, Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
			{Prompt: "house in German", Kind: domain.KindFillIn, CorrectAnswer: "Haus"},
		},
	}
}
