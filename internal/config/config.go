// Package config loads and validates the YAML configuration for the
// chattermouth binary. Values may reference environment variables with
// ${VAR} and ${VAR:-default} syntax.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Slack event-source modes.
const (
	ModeSocket  = "socket"
	ModeWebhook = "webhook"
)

// Config is the root configuration document.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Slack      SlackConfig      `yaml:"slack"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// SlackConfig configures the chat backend.
type SlackConfig struct {
	// Token is the bot token used for Web API RPCs.
	Token string `yaml:"token"`

	// AppToken is the app-level token used to open socket-mode connections.
	// Required in socket mode.
	AppToken string `yaml:"app_token"`

	// Mode selects the event source: "socket" or "webhook".
	Mode string `yaml:"mode"`

	// ListenAddr is the HTTP bind address in webhook mode.
	ListenAddr string `yaml:"listen_addr"`

	// SigningSecret validates Events API request signatures in webhook mode.
	SigningSecret string `yaml:"signing_secret"`

	// MaxIdle is how long a conversation may sit idle before it is pruned.
	MaxIdle time.Duration `yaml:"max_idle"`
}

// ClassifierConfig configures the yes/no classifier.
type ClassifierConfig struct {
	// Threshold is the confidence required for a yes/no decision.
	Threshold float64 `yaml:"threshold"`

	// CorpusPath optionally points at a YAML training corpus that replaces
	// the built-in one.
	CorpusPath string `yaml:"corpus_path"`

	// CorpusDB optionally points at a SQLite training corpus that replaces
	// the built-in one. Mutually exclusive with CorpusPath.
	CorpusDB string `yaml:"corpus_db"`
}

// defaults fills zero values with usable defaults.
func (c *Config) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Slack.Mode == "" {
		c.Slack.Mode = ModeSocket
	}
	if c.Slack.ListenAddr == "" {
		c.Slack.ListenAddr = ":8080"
	}
	if c.Slack.MaxIdle == 0 {
		c.Slack.MaxIdle = 30 * time.Minute
	}
	if c.Classifier.Threshold == 0 {
		c.Classifier.Threshold = 0.75
	}
}

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a YAML configuration file, expands environment variables, and
// parses it into a Config with defaults applied.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.defaults()
	return &cfg, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env
// value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil
		defaultVal := ""
		if hasDefault {
			defaultVal = string(subs[2])
		}

		value, ok := os.LookupEnv(name)
		if ok {
			return []byte(value)
		}

		if hasDefault {
			return []byte(defaultVal)
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}

// Validate checks the configuration for deployment mistakes.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Slack.Token == "" {
		errs = append(errs, errors.New("slack.token is required"))
	}

	switch cfg.Slack.Mode {
	case ModeSocket:
		if cfg.Slack.AppToken == "" {
			errs = append(errs, errors.New("slack.app_token is required in socket mode"))
		}
	case ModeWebhook:
		if cfg.Slack.ListenAddr == "" {
			errs = append(errs, errors.New("slack.listen_addr is required in webhook mode"))
		}
		if cfg.Slack.SigningSecret == "" {
			errs = append(errs, errors.New("slack.signing_secret is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("slack.mode must be %q or %q, got %q", ModeSocket, ModeWebhook, cfg.Slack.Mode))
	}

	if cfg.Slack.MaxIdle < 0 {
		errs = append(errs, errors.New("slack.max_idle must not be negative"))
	}

	if t := cfg.Classifier.Threshold; t <= 0 || t >= 1 {
		errs = append(errs, fmt.Errorf("classifier.threshold must be strictly between 0 and 1, got %v", t))
	}
	if cfg.Classifier.CorpusPath != "" && cfg.Classifier.CorpusDB != "" {
		errs = append(errs, errors.New("classifier.corpus_path and classifier.corpus_db are mutually exclusive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
