package app

import (
	"fmt"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// State is the phase of a quiz attempt.
type State string

const (
	StateInProgress      State = "in_progress"
	StateAwaitingAdvance State = "awaiting_advance"
	StateCompleted       State = "completed"
)

const correctFeedback = "Correct!"

// Result describes the outcome of one submitted answer.
type Result struct {
	Index    int    `json:"index"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}

// QuizSession drives a single attempt of one quiz. It is owned by one
// workspace and is not safe for concurrent use.
type QuizSession struct {
	quiz     domain.Quiz
	state    State
	index    int
	score    int
	feedback string
	answers  []bool
}

// NewQuizSession starts an attempt of quiz.
func NewQuizSession(quiz domain.Quiz) *QuizSession {
	s := &QuizSession{}
	s.Start(quiz)
	return s
}

// Start resets the attempt onto quiz, whatever the prior state was.
func (s *QuizSession) Start(quiz domain.Quiz) {
	s.quiz = quiz
	s.index = 0
	s.score = 0
	s.feedback = ""
	s.answers = s.answers[:0]
	if len(quiz.Questions) == 0 {
		s.state = StateCompleted
		return
	}
	s.state = StateInProgress
}

// Restart re-enters Start on the current quiz.
func (s *QuizSession) Restart() {
	s.Start(s.quiz)
}

// Submit records an answer for the question at index. The index must be the
// current one; answering again before Advance replaces the earlier answer.
func (s *QuizSession) Submit(index int, answer string) (Result, error) {
	switch s.state {
	case StateCompleted:
		return Result{}, domain.ErrQuizCompleted
	case StateInProgress, StateAwaitingAdvance:
		if index != s.index {
			return Result{}, fmt.Errorf("%w: got index %d, current is %d", domain.ErrOutOfSequence, index, s.index)
		}
	default:
		return Result{}, domain.ErrNoActiveQuiz
	}

	question := s.quiz.Questions[s.index]
	given := domain.NormalizeAnswer(answer)
	if question.Kind != domain.KindFillIn && !declared(question, given) {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUndeclaredOption, answer)
	}

	correct := given == domain.NormalizeAnswer(string(question.CorrectAnswer))

	if s.state == StateAwaitingAdvance {
		// Re-submission: undo the previous contribution before applying the new one.
		if s.answers[s.index] {
			s.score--
		}
		s.answers[s.index] = correct
	} else {
		s.answers = append(s.answers, correct)
	}
	if correct {
		s.score++
		s.feedback = correctFeedback
	} else {
		s.feedback = "Wrong! Correct answer: " + string(question.CorrectAnswer)
	}
	s.state = StateAwaitingAdvance

	return Result{Index: index, Correct: correct, Feedback: s.feedback, Score: s.score}, nil
}

// Advance moves past an answered question, completing the attempt after the last one.
func (s *QuizSession) Advance() error {
	switch s.state {
	case StateCompleted:
		return domain.ErrQuizCompleted
	case StateInProgress:
		return domain.ErrNotAwaitingAdvance
	case StateAwaitingAdvance:
	default:
		return domain.ErrNoActiveQuiz
	}

	s.feedback = ""
	if s.index+1 < len(s.quiz.Questions) {
		s.index++
		s.state = StateInProgress
		return nil
	}
	s.index = len(s.quiz.Questions)
	s.state = StateCompleted
	return nil
}

func declared(q domain.Question, normalized string) bool {
	for _, opt := range q.AllowedOptions() {
		if domain.NormalizeAnswer(opt) == normalized {
			return true
		}
	}
	return false
}

func (s *QuizSession) Quiz() domain.Quiz { return s.quiz }
func (s *QuizSession) State() State      { return s.state }
func (s *QuizSession) Index() int        { return s.index }
func (s *QuizSession) Score() int        { return s.score }
func (s *QuizSession) Total() int        { return len(s.quiz.Questions) }
func (s *QuizSession) Feedback() string  { return s.feedback }

// Answers returns a copy of the per-question correctness record.
func (s *QuizSession) Answers() []bool {
	return append([]bool(nil), s.answers...)
}

// Current returns the question at the current index, if the attempt is not complete.
func (s *QuizSession) Current() (domain.Question, bool) {
	if s.state != StateInProgress && s.state != StateAwaitingAdvance {
		return domain.Question{}, false
	}
	return s.quiz.Questions[s.index], true
}

// Passed reports whether a completed attempt scored at least ratio of the questions.
func (s *QuizSession) Passed(ratio float64) bool {
	if s.state != StateCompleted || s.Total() == 0 {
		return false
	}
	return float64(s.score) >= ratio*float64(s.Total())
}

// QuestionView is the client-facing form of a question; the answer is withheld.
type QuestionView struct {
	Number  int         `json:"number"`
	Prompt  string      `json:"prompt"`
	Kind    domain.Kind `json:"kind"`
	Options []string    `json:"options,omitempty"`
}

// QuizView is a JSON-friendly snapshot of the attempt for presentation.
type QuizView struct {
	QuizID   int           `json:"quiz_id"`
	Title    string        `json:"title"`
	State    State         `json:"state"`
	Index    int           `json:"index"`
	Score    int           `json:"score"`
	Total    int           `json:"total"`
	Feedback string        `json:"feedback,omitempty"`
	Question *QuestionView `json:"question,omitempty"`
	Summary  string        `json:"summary,omitempty"`
}

func (s *QuizSession) View() QuizView {
	v := QuizView{
		QuizID:   s.quiz.ID,
		Title:    s.quiz.Title,
		State:    s.state,
		Index:    s.index,
		Score:    s.score,
		Total:    s.Total(),
		Feedback: s.feedback,
	}
	if q, ok := s.Current(); ok {
		v.Question = &QuestionView{
			Number:  s.index + 1,
			Prompt:  q.Prompt,
			Kind:    q.Kind,
			Options: q.AllowedOptions(),
		}
	} else {
		v.Summary = fmt.Sprintf("Quiz finished! Your score: %d/%d", s.score, s.Total())
	}
	return v
}

// QuizSnapshot is the persisted form of an attempt.
type QuizSnapshot struct {
	QuizID   int    `json:"quiz_id"`
	State    State  `json:"state"`
	Index    int    `json:"index"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback,omitempty"`
	Answers  []bool `json:"answers"`
}

func (s *QuizSession) Snapshot() QuizSnapshot {
	return QuizSnapshot{
		QuizID:   s.quiz.ID,
		State:    s.state,
		Index:    s.index,
		Score:    s.score,
		Feedback: s.feedback,
		Answers:  s.Answers(),
	}
}

// RestoreQuizSession rebuilds an attempt from a snapshot, rejecting snapshots
// that break the attempt invariants.
func RestoreQuizSession(quiz domain.Quiz, snap QuizSnapshot) (*QuizSession, error) {
	if snap.QuizID != quiz.ID {
		return nil, fmt.Errorf("%w: snapshot is for quiz %d, not %d", domain.ErrProtocolViolation, snap.QuizID, quiz.ID)
	}
	n := len(quiz.Questions)
	answered := len(snap.Answers)

	var valid bool
	switch snap.State {
	case StateInProgress:
		valid = snap.Index >= 0 && snap.Index < n && answered == snap.Index
	case StateAwaitingAdvance:
		valid = snap.Index >= 0 && snap.Index < n && answered == snap.Index+1
	case StateCompleted:
		valid = snap.Index == n && answered == n
	}
	if !valid {
		return nil, fmt.Errorf("%w: inconsistent snapshot (state %s, index %d, %d answers, %d questions)",
			domain.ErrProtocolViolation, snap.State, snap.Index, answered, n)
	}

	score := 0
	for _, ok := range snap.Answers {
		if ok {
			score++
		}
	}
	if score != snap.Score {
		return nil, fmt.Errorf("%w: snapshot score %d does not match answers (%d)", domain.ErrProtocolViolation, snap.Score, score)
	}

	return &QuizSession{
		quiz:     quiz,
		state:    snap.State,
		index:    snap.Index,
		score:    score,
		feedback: snap.Feedback,
		answers:  append([]bool(nil), snap.Answers...),
	}, nil
}
