package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Second

type Config struct {
	// Endpoint accepts POST {"text","source_lang","target_lang"}. Empty means
	// dictionary only.
	Endpoint string
	Timeout  time.Duration
}

// Gateway translates text through a remote service and falls back to the local
// dictionary on any failure. It makes one attempt per call.
type Gateway struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	dict       *Dictionary
	log        logrus.FieldLogger
}

func NewGateway(cfg Config, dict *Dictionary, log logrus.FieldLogger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if dict == nil {
		dict = NewDictionary()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		dict: dict,
		log:  log.WithField("component", "translate"),
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	// Some services answer in camelCase.
	TranslatedTextAlt string `json:"translatedText"`
}

// Translate never fails: remote errors are logged and answered from the
// dictionary, and unknown phrases yield NotFound.
func (g *Gateway) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if src := baseLanguage(sourceLang); src != "" && src == baseLanguage(targetLang) {
		return text
	}

	if g.endpoint != "" {
		out, err := g.remote(ctx, text, sourceLang, targetLang)
		if err == nil {
			return out
		}
		g.log.WithError(err).WithFields(logrus.Fields{
			"source_lang": sourceLang,
			"target_lang": targetLang,
		}).Warn("remote translation failed, using dictionary")
	}

	if out, ok := g.dict.Lookup(text, sourceLang, targetLang); ok {
		return out
	}
	return NotFound
}

func (g *Gateway) remote(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(translateRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrExternalService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", domain.ErrExternalService, resp.StatusCode)
	}

	var decoded translateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrExternalService, err)
	}
	out := strings.TrimSpace(decoded.TranslatedText)
	if out == "" {
		out = strings.TrimSpace(decoded.TranslatedTextAlt)
	}
	if out == "" {
		return "", fmt.Errorf("%w: empty translation", domain.ErrExternalService)
	}
	return out, nil
}
