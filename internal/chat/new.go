package chat

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ModeRules      = "rules"
	ModeGenerative = "generative"
)

type Config struct {
	Mode         string
	Endpoint     string
	Model        string
	APIKey       string
	ContextLimit int
	MaxNewTokens int
	Timeout      time.Duration
}

// New picks the responder strategy from configuration. Generative mode without
// an endpoint degrades to the rule-based responder.
func New(cfg Config, log logrus.FieldLogger) Responder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	switch cfg.Mode {
	case ModeGenerative:
		if cfg.Endpoint == "" {
			log.Warn("chat: generative mode without endpoint, using rules")
			break
		}
		backend := NewOpenAIBackend(cfg.Endpoint, cfg.Model, cfg.APIKey)
		return NewGenerative(backend, GenerativeConfig{
			ContextLimit: cfg.ContextLimit,
			MaxNewTokens: cfg.MaxNewTokens,
			Timeout:      cfg.Timeout,
		}, log)
	case "", ModeRules:
	default:
		log.WithField("mode", cfg.Mode).Warn("chat: unknown mode, using rules")
	}
	return NewRuleBased(rand.New(rand.NewSource(time.Now().UnixNano())))
}
