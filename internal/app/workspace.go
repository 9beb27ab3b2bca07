package app

import (
	"context"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// SessionRepository abstracts where workspaces are kept between requests (in-memory, Redis).
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (WorkspaceSnapshot, bool, error)
	Save(ctx context.Context, sessionID string, snap WorkspaceSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// Workspace is everything one user session owns: progress, the running quiz
// attempt and the recent chat turns.
type Workspace struct {
	ID       string
	Progress *Progress
	Quiz     *QuizSession
	History  []domain.Turn
}

// WorkspaceSnapshot is the stored form of a Workspace.
type WorkspaceSnapshot struct {
	Completed []int         `json:"completed"`
	Quiz      *QuizSnapshot `json:"quiz,omitempty"`
	History   []domain.Turn `json:"history,omitempty"`
}

func (w *Workspace) Snapshot() WorkspaceSnapshot {
	snap := WorkspaceSnapshot{
		Completed: w.Progress.Completed(),
		History:   append([]domain.Turn(nil), w.History...),
	}
	if w.Quiz != nil {
		q := w.Quiz.Snapshot()
		snap.Quiz = &q
	}
	return snap
}

// appendTurns records turns, keeping at most limit of the most recent ones.
func (w *Workspace) appendTurns(limit int, turns ...domain.Turn) {
	w.History = append(w.History, turns...)
	if limit > 0 && len(w.History) > limit {
		w.History = append([]domain.Turn(nil), w.History[len(w.History)-limit:]...)
	}
}
