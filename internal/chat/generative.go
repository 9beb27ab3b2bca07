package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/sirupsen/logrus"
)

// Message is one entry of a chat-completion prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend generates a completion of at most maxTokens new tokens.
type Backend interface {
	Generate(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// Tokenizer estimates how many model tokens a text occupies.
type Tokenizer func(text string) int

// WordTokenizer approximates tokens as 4/3 per whitespace-separated word.
func WordTokenizer(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}

const defaultSystemPrompt = "You are Lingo, a friendly German tutor. Answer briefly, " +
	"mixing simple German with English explanations."

type GenerativeConfig struct {
	ContextLimit   int
	MaxNewTokens   int
	Timeout        time.Duration
	MinReplyLength int
	SystemPrompt   string
	Tokenizer      Tokenizer
}

func (c GenerativeConfig) withDefaults() GenerativeConfig {
	if c.ContextLimit <= 0 {
		c.ContextLimit = 1024
	}
	if c.MaxNewTokens <= 0 {
		c.MaxNewTokens = 128
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MinReplyLength <= 0 {
		c.MinReplyLength = 2
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
	if c.Tokenizer == nil {
		c.Tokenizer = WordTokenizer
	}
	return c
}

// Generative answers through a text-generation backend and cleans its output.
type Generative struct {
	backend Backend
	cfg     GenerativeConfig
	log     logrus.FieldLogger
}

func NewGenerative(backend Backend, cfg GenerativeConfig, log logrus.FieldLogger) *Generative {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generative{backend: backend, cfg: cfg.withDefaults(), log: log.WithField("component", "chat")}
}

func (g *Generative) Respond(ctx context.Context, utterance string, history []domain.Turn) string {
	messages := g.prompt(utterance, history)

	promptTokens := 0
	for _, m := range messages {
		promptTokens += g.cfg.Tokenizer(m.Content)
	}
	budget := g.cfg.ContextLimit - promptTokens
	if g.cfg.MaxNewTokens < budget {
		budget = g.cfg.MaxNewTokens
	}
	if budget <= 0 {
		g.log.WithField("prompt_tokens", promptTokens).Info("prompt exceeds context limit")
		return TooLongReply
	}

	raw, err := g.generate(ctx, messages, budget)
	if err != nil {
		g.log.WithError(err).Warn("generation failed")
		return ErrorReply
	}

	reply := Sanitize(raw)
	if utf8.RuneCountInString(reply) < g.cfg.MinReplyLength || urlLike.MatchString(reply) {
		return ApologyReply
	}
	return reply
}

func (g *Generative) prompt(utterance string, history []domain.Turn) []Message {
	window := Window(history, HistoryWindow)
	messages := make([]Message, 0, len(window)+2)
	messages = append(messages, Message{Role: "system", Content: g.cfg.SystemPrompt})
	for _, turn := range window {
		role := "user"
		if turn.Role == domain.RoleBot {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: turn.Text})
	}
	return append(messages, Message{Role: "user", Content: strings.TrimSpace(utterance)})
}

func (g *Generative) generate(ctx context.Context, messages []Message, budget int) (out string, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: backend panic: %v", domain.ErrExternalService, r)
		}
	}()
	return g.backend.Generate(ctx, messages, budget)
}

var (
	bracketed       = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|<[^>]*>`)
	urls            = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	schemeTokens    = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*:\S+`)
	repeatedPunct   = regexp.MustCompile(`([!?.,;:])[!?.,;:]+`)
	spaceBeforePunc = regexp.MustCompile(`\s+([!?.,;:])`)
	urlLike         = regexp.MustCompile(`(?i)://|www\.|\b[a-z0-9-]+\.(?:com|de|org|net|io)\b`)
)

// Sanitize strips markup-like spans, links and shouting from model output.
func Sanitize(text string) string {
	text = bracketed.ReplaceAllString(text, " ")
	text = urls.ReplaceAllString(text, " ")
	text = schemeTokens.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if !allCaps(f) {
			kept = append(kept, f)
		}
	}
	text = strings.Join(kept, " ")

	text = repeatedPunct.ReplaceAllString(text, "$1")
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = strings.TrimLeft(text, "!?.,;: ")
	return strings.TrimSpace(text)
}

// allCaps reports tokens with at least two letters, all upper case.
func allCaps(token string) bool {
	letters := 0
	for _, r := range token {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
