package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Content struct {
		Lessons string `yaml:"lessons"`
		Quizzes string `yaml:"quizzes"`
		// Source is "file" or "postgres".
		Source   string `yaml:"source"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"content"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Session struct {
		TTL          string `yaml:"ttl"`
		HistoryLimit int    `yaml:"history_limit"`
	} `yaml:"session"`
	Quiz struct {
		PassRatio float64 `yaml:"pass_ratio"`
	} `yaml:"quiz"`
	Translate struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"translate"`
	Chat struct {
		Mode         string `yaml:"mode"`
		Endpoint     string `yaml:"endpoint"`
		Model        string `yaml:"model"`
		APIKey       string `yaml:"api_key"`
		ContextLimit int    `yaml:"context_limit"`
		MaxNewTokens int    `yaml:"max_new_tokens"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"chat"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Content.Source = "file"
	cfg.Content.Lessons = "data/lessons.json"
	cfg.Content.Quizzes = "data/quizzes.json"
	cfg.Content.CacheTTL = "10m"
	cfg.Session.TTL = "2h"
	cfg.Quiz.PassRatio = 0.7
	cfg.Translate.Timeout = "5s"
	cfg.Chat.Mode = "rules"
	cfg.Chat.Timeout = "20s"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file is
// not an error; a malformed one is. OPENAI_API_KEY and TRANSLATE_ENDPOINT
// override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Chat.APIKey = key
	}
	if endpoint := os.Getenv("TRANSLATE_ENDPOINT"); endpoint != "" {
		cfg.Translate.Endpoint = endpoint
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
