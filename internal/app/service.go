package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/sirupsen/logrus"
)

// ContentSource serves immutable lesson and quiz content.
type ContentSource interface {
	Lessons(ctx context.Context) ([]domain.Lesson, error)
	Quizzes(ctx context.Context) ([]domain.Quiz, error)
	LessonIDs(ctx context.Context) ([]int, error)
	FindLesson(ctx context.Context, id int) (domain.Lesson, bool, error)
	FindQuiz(ctx context.Context, id int) (domain.Quiz, bool, error)
}

// Translator turns text from one language into another. It never fails; failures
// surface as fallback text.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) string
}

// Responder produces a chat reply for an utterance given recent history.
type Responder interface {
	Respond(ctx context.Context, utterance string, history []domain.Turn) string
}

const (
	DefaultPassRatio    = 0.7
	DefaultHistoryLimit = 10
)

// Options tune the service; zero values fall back to defaults.
type Options struct {
	PassRatio    float64
	HistoryLimit int
	Logger       logrus.FieldLogger
}

// Service contains the use cases behind every user action.
type Service struct {
	content    ContentSource
	sessions   SessionRepository
	translator Translator
	responder  Responder

	passRatio    float64
	historyLimit int
	log          logrus.FieldLogger
}

func NewService(content ContentSource, sessions SessionRepository, translator Translator, responder Responder, opts Options) *Service {
	if opts.PassRatio <= 0 || opts.PassRatio > 1 {
		opts.PassRatio = DefaultPassRatio
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Service{
		content:      content,
		sessions:     sessions,
		translator:   translator,
		responder:    responder,
		passRatio:    opts.PassRatio,
		historyLimit: opts.HistoryLimit,
		log:          opts.Logger,
	}
}

// HomeSummary feeds the landing page.
type HomeSummary struct {
	Progress ProgressSummary `json:"progress"`
	Lessons  int             `json:"lessons"`
	Quizzes  int             `json:"quizzes"`
}

// ProgressSummary reports lesson completion for a session.
type ProgressSummary struct {
	Completed int   `json:"completed"`
	Total     int   `json:"total"`
	Percent   int   `json:"percent"`
	LessonIDs []int `json:"lesson_ids"`
}

// QuizSummary lists a quiz without revealing its answers.
type QuizSummary struct {
	ID        int    `json:"id"`
	LessonID  *int   `json:"lesson_id,omitempty"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
}

func (s *Service) Home(ctx context.Context, sessionID string) (HomeSummary, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return HomeSummary{}, err
	}
	lessons, err := s.content.Lessons(ctx)
	if err != nil {
		return HomeSummary{}, err
	}
	quizzes, err := s.content.Quizzes(ctx)
	if err != nil {
		return HomeSummary{}, err
	}
	return HomeSummary{
		Progress: summarize(ws.Progress),
		Lessons:  len(lessons),
		Quizzes:  len(quizzes),
	}, nil
}

func (s *Service) Lessons(ctx context.Context) ([]domain.Lesson, error) {
	return s.content.Lessons(ctx)
}

func (s *Service) Lesson(ctx context.Context, id int) (domain.Lesson, error) {
	lesson, ok, err := s.content.FindLesson(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}
	if !ok {
		return domain.Lesson{}, fmt.Errorf("%w: %d", domain.ErrUnknownLesson, id)
	}
	return lesson, nil
}

func (s *Service) Quizzes(ctx context.Context) ([]QuizSummary, error) {
	quizzes, err := s.content.Quizzes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, QuizSummary{ID: q.ID, LessonID: q.LessonID, Title: q.Title, Questions: len(q.Questions)})
	}
	return out, nil
}

func (s *Service) Quiz(ctx context.Context, id int) (QuizSummary, error) {
	q, err := s.findQuiz(ctx, id)
	if err != nil {
		return QuizSummary{}, err
	}
	return QuizSummary{ID: q.ID, LessonID: q.LessonID, Title: q.Title, Questions: len(q.Questions)}, nil
}

// StartQuiz begins a fresh attempt, discarding any attempt already running.
func (s *Service) StartQuiz(ctx context.Context, sessionID string, quizID int) (QuizView, error) {
	quiz, err := s.findQuiz(ctx, quizID)
	if err != nil {
		return QuizView{}, err
	}
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	if ws.Quiz == nil {
		ws.Quiz = NewQuizSession(quiz)
	} else {
		ws.Quiz.Start(quiz)
	}
	if err := s.save(ctx, ws); err != nil {
		return QuizView{}, err
	}
	return ws.Quiz.View(), nil
}

func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, index int, answer string) (Result, QuizView, error) {
	ws, err := s.activeQuiz(ctx, sessionID)
	if err != nil {
		return Result{}, QuizView{}, err
	}
	result, err := ws.Quiz.Submit(index, answer)
	if err != nil {
		return Result{}, QuizView{}, err
	}
	if err := s.save(ctx, ws); err != nil {
		return Result{}, QuizView{}, err
	}
	return result, ws.Quiz.View(), nil
}

// Advance moves to the next question. Completing a quiz linked to a lesson with
// a passing score marks that lesson complete.
func (s *Service) Advance(ctx context.Context, sessionID string) (QuizView, error) {
	ws, err := s.activeQuiz(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	if err := ws.Quiz.Advance(); err != nil {
		return QuizView{}, err
	}

	if ws.Quiz.State() == StateCompleted {
		quiz := ws.Quiz.Quiz()
		entry := s.log.WithFields(logrus.Fields{
			"session": sessionID,
			"quiz":    quiz.ID,
			"score":   ws.Quiz.Score(),
			"total":   ws.Quiz.Total(),
		})
		entry.Info("quiz completed")
		if quiz.LessonID != nil && ws.Quiz.Passed(s.passRatio) {
			if err := ws.Progress.MarkComplete(*quiz.LessonID); err != nil {
				entry.WithError(err).Warn("quiz linked to unknown lesson")
			}
		}
	}

	if err := s.save(ctx, ws); err != nil {
		return QuizView{}, err
	}
	return ws.Quiz.View(), nil
}

func (s *Service) RestartQuiz(ctx context.Context, sessionID string) (QuizView, error) {
	ws, err := s.activeQuiz(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	ws.Quiz.Restart()
	if err := s.save(ctx, ws); err != nil {
		return QuizView{}, err
	}
	return ws.Quiz.View(), nil
}

func (s *Service) CurrentQuiz(ctx context.Context, sessionID string) (QuizView, error) {
	ws, err := s.activeQuiz(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	return ws.Quiz.View(), nil
}

func (s *Service) ProgressSummary(ctx context.Context, sessionID string) (ProgressSummary, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return ProgressSummary{}, err
	}
	return summarize(ws.Progress), nil
}

func (s *Service) MarkLessonComplete(ctx context.Context, sessionID string, lessonID int) (ProgressSummary, error) {
	return s.updateProgress(ctx, sessionID, func(p *Progress) error {
		return p.MarkComplete(lessonID)
	})
}

func (s *Service) ResetProgress(ctx context.Context, sessionID string) (ProgressSummary, error) {
	return s.updateProgress(ctx, sessionID, func(p *Progress) error {
		p.Reset()
		return nil
	})
}

func (s *Service) CompleteAllLessons(ctx context.Context, sessionID string) (ProgressSummary, error) {
	ids, err := s.content.LessonIDs(ctx)
	if err != nil {
		return ProgressSummary{}, err
	}
	return s.updateProgress(ctx, sessionID, func(p *Progress) error {
		p.MarkAll(ids)
		return nil
	})
}

func (s *Service) ExportProgress(ctx context.Context, sessionID string) (domain.ProgressSnapshot, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return domain.ProgressSnapshot{}, err
	}
	return ws.Progress.Export(), nil
}

func (s *Service) ImportProgress(ctx context.Context, sessionID string, snap domain.ProgressSnapshot) (ProgressSummary, error) {
	return s.updateProgress(ctx, sessionID, func(p *Progress) error {
		p.Import(snap)
		return nil
	})
}

// Translate blocks for at most the gateway timeout.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	return s.translator.Translate(ctx, text, sourceLang, targetLang)
}

// Chat answers an utterance and records the exchange in the session history.
func (s *Service) Chat(ctx context.Context, sessionID, utterance string) (string, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return "", err
	}
	reply := s.responder.Respond(ctx, utterance, ws.History)
	ws.appendTurns(s.historyLimit,
		domain.Turn{Role: domain.RoleUser, Text: utterance},
		domain.Turn{Role: domain.RoleBot, Text: reply},
	)
	if err := s.save(ctx, ws); err != nil {
		return "", err
	}
	return reply, nil
}

// EndSession discards everything the session owns.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *Service) updateProgress(ctx context.Context, sessionID string, mutate func(*Progress) error) (ProgressSummary, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return ProgressSummary{}, err
	}
	if err := mutate(ws.Progress); err != nil {
		return ProgressSummary{}, err
	}
	if err := s.save(ctx, ws); err != nil {
		return ProgressSummary{}, err
	}
	return summarize(ws.Progress), nil
}

func (s *Service) findQuiz(ctx context.Context, id int) (domain.Quiz, error) {
	quiz, ok, err := s.content.FindQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !ok {
		return domain.Quiz{}, fmt.Errorf("%w: %d", domain.ErrUnknownQuiz, id)
	}
	return quiz, nil
}

func (s *Service) activeQuiz(ctx context.Context, sessionID string) (*Workspace, error) {
	ws, err := s.workspace(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ws.Quiz == nil {
		return nil, domain.ErrNoActiveQuiz
	}
	return ws, nil
}

// workspace loads the session's state, starting empty for new sessions.
func (s *Service) workspace(ctx context.Context, sessionID string) (*Workspace, error) {
	known, err := s.content.LessonIDs(ctx)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{ID: sessionID, Progress: NewProgress(known)}

	snap, ok, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return ws, nil
	}

	ws.Progress.MarkAll(snap.Completed)
	ws.History = snap.History
	if snap.Quiz != nil {
		ws.Quiz, err = s.restoreQuiz(ctx, *snap.Quiz)
		if err != nil {
			// A stale attempt (content changed, corrupt entry) is dropped rather than failing the session.
			s.log.WithError(err).WithField("session", sessionID).Warn("discarding stored quiz attempt")
			ws.Quiz = nil
		}
	}
	return ws, nil
}

func (s *Service) restoreQuiz(ctx context.Context, snap QuizSnapshot) (*QuizSession, error) {
	quiz, err := s.findQuiz(ctx, snap.QuizID)
	if err != nil {
		return nil, err
	}
	return RestoreQuizSession(quiz, snap)
}

func (s *Service) save(ctx context.Context, ws *Workspace) error {
	if err := s.sessions.Save(ctx, ws.ID, ws.Snapshot()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func summarize(p *Progress) ProgressSummary {
	completed, total := p.Ratio()
	return ProgressSummary{
		Completed: completed,
		Total:     total,
		Percent:   p.Percent(),
		LessonIDs: p.Completed(),
	}
}

// IsCallerError reports whether err stems from a bad request rather than a fault.
func IsCallerError(err error) bool {
	return errors.Is(err, domain.ErrProtocolViolation) ||
		errors.Is(err, domain.ErrUnknownLesson) ||
		errors.Is(err, domain.ErrUnknownQuiz) ||
		errors.Is(err, domain.ErrNoActiveQuiz)
}
