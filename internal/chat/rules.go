package chat

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"golang.org/x/text/cases"
)

// Rule maps an intent to a reply. Rules are tried in order and the first
// match wins.
type Rule struct {
	Intent string
	Match  func(utterance string) bool
	Reply  func() string
}

var fillerReplies = []string{
	"Interessant! Erzähl mir mehr. (Interesting! Tell me more.)",
	"Ich verstehe. Was möchtest du heute lernen?",
	"Sehr gut! Try saying that in German.",
	"Hmm, lass uns weiter üben. Let's keep practising!",
	FallbackReply,
}

// RuleBased is the deterministic keyword responder. Only the default intent
// uses randomness.
type RuleBased struct {
	rules []Rule

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRuleBased builds the standard intent table. A nil rnd is seeded from the clock.
func NewRuleBased(rnd *rand.Rand) *RuleBased {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &RuleBased{rnd: rnd}
	r.rules = []Rule{
		{Intent: "greeting", Match: keywords("hallo", "hello", "hey", "guten tag", "guten morgen", "guten abend", "servus", "moin"), Reply: fixed("Hallo! Wie kann ich dir heute helfen? (How can I help you today?)")},
		{Intent: "status", Match: keywords("wie geht", "how are you", "how's it going", "wie läuft"), Reply: fixed("Mir geht es gut, danke! Und dir? (I'm fine, thanks! And you?)")},
		{Intent: "thanks", Match: keywords("danke", "thank", "vielen dank"), Reply: fixed(ThanksReply)},
		{Intent: "farewell", Match: keywords("tschüss", "bye", "auf wiedersehen", "bis bald", "bis später"), Reply: fixed("Tschüss! Bis bald. (Bye! See you soon.)")},
		{Intent: "identity", Match: keywords("wer bist du", "who are you", "your name", "wie heißt du"), Reply: fixed("Ich bin Lingo, dein Deutsch-Assistent. I'm Lingo, your German practice buddy.")},
		{Intent: "help", Match: keywords("hilfe", "help", "what can you do", "was kannst du"), Reply: fixed("Ask me for a phrase, practise small talk with me, or open a lesson or quiz.")},
		{Intent: "default", Match: func(string) bool { return true }, Reply: r.filler},
	}
	return r
}

func (r *RuleBased) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Intent returns the name of the first rule matching utterance.
func (r *RuleBased) Intent(utterance string) string {
	return r.match(utterance).Intent
}

func (r *RuleBased) Respond(_ context.Context, utterance string, _ []domain.Turn) string {
	return r.match(utterance).Reply()
}

func (r *RuleBased) match(utterance string) Rule {
	folded := cases.Fold().String(utterance)
	for _, rule := range r.rules {
		if rule.Match(folded) {
			return rule
		}
	}
	return r.rules[len(r.rules)-1]
}

func (r *RuleBased) filler() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fillerReplies[r.rnd.Intn(len(fillerReplies))]
}

func fixed(reply string) func() string {
	return func() string { return reply }
}

// keywords matches case-folded text containing any of the keywords.
func keywords(words ...string) func(string) bool {
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = cases.Fold().String(w)
	}
	return func(text string) bool {
		for _, kw := range folded {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}
