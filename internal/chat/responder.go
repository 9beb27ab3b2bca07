package chat

import (
	"context"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// HistoryWindow is how many prior turns a responder may look at.
const HistoryWindow = 4

// Fixed replies shared by the strategies.
const (
	ThanksReply   = "Gern geschehen! You're welcome."
	TooLongReply  = "Das ist zu lang für mich. Could you say that in fewer words?"
	ApologyReply  = "Entschuldigung, I don't have a good answer to that. Try asking differently."
	ErrorReply    = "Entschuldigung, something went wrong on my side. Please try again."
	FallbackReply = "Ich verstehe. Tell me more!"
)

// Responder produces a reply to an utterance given recent turns. It never fails;
// backend problems surface as one of the fixed replies.
type Responder interface {
	Respond(ctx context.Context, utterance string, history []domain.Turn) string
}

// Window returns the last n turns of history.
func Window(history []domain.Turn, n int) []domain.Turn {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
