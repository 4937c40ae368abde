package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
slack:
  token: xoxb-test
  app_token: xapp-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Slack.Mode != ModeSocket {
		t.Errorf("Slack.Mode = %q, want %q", cfg.Slack.Mode, ModeSocket)
	}
	if cfg.Slack.ListenAddr != ":8080" {
		t.Errorf("Slack.ListenAddr = %q, want :8080", cfg.Slack.ListenAddr)
	}
	if cfg.Slack.MaxIdle != 30*time.Minute {
		t.Errorf("Slack.MaxIdle = %v, want 30m", cfg.Slack.MaxIdle)
	}
	if cfg.Classifier.Threshold != 0.75 {
		t.Errorf("Classifier.Threshold = %v, want 0.75", cfg.Classifier.Threshold)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CHATTERMOUTH_TEST_TOKEN", "xoxb-from-env")

	path := writeConfig(t, `
slack:
  token: ${CHATTERMOUTH_TEST_TOKEN}
  app_token: ${CHATTERMOUTH_TEST_APP_TOKEN:-xapp-default}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Slack.Token != "xoxb-from-env" {
		t.Errorf("Slack.Token = %q, want value from environment", cfg.Slack.Token)
	}
	if cfg.Slack.AppToken != "xapp-default" {
		t.Errorf("Slack.AppToken = %q, want fallback default", cfg.Slack.AppToken)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
slack:
  token: ${CHATTERMOUTH_TEST_MISSING_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for an unresolved variable")
	}
	if !strings.Contains(err.Error(), "CHATTERMOUTH_TEST_MISSING_VAR") {
		t.Errorf("error = %v, want it to name the variable", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := &Config{}
		cfg.Slack.Token = "xoxb-test"
		cfg.Slack.AppToken = "xapp-test"
		cfg.defaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid socket mode",
			mutate: func(*Config) {},
		},
		{
			name: "valid webhook mode",
			mutate: func(cfg *Config) {
				cfg.Slack.Mode = ModeWebhook
				cfg.Slack.SigningSecret = "secret"
			},
		},
		{
			name:    "missing token",
			mutate:  func(cfg *Config) { cfg.Slack.Token = "" },
			wantErr: "slack.token",
		},
		{
			name: "socket mode without app token",
			mutate: func(cfg *Config) {
				cfg.Slack.AppToken = ""
			},
			wantErr: "slack.app_token",
		},
		{
			name: "webhook mode without signing secret",
			mutate: func(cfg *Config) {
				cfg.Slack.Mode = ModeWebhook
			},
			wantErr: "slack.signing_secret",
		},
		{
			name: "webhook mode without listen addr",
			mutate: func(cfg *Config) {
				cfg.Slack.Mode = ModeWebhook
				cfg.Slack.SigningSecret = "secret"
				cfg.Slack.ListenAddr = ""
			},
			wantErr: "slack.listen_addr",
		},
		{
			name:    "unknown mode",
			mutate:  func(cfg *Config) { cfg.Slack.Mode = "carrier-pigeon" },
			wantErr: "slack.mode",
		},
		{
			name:    "negative max idle",
			mutate:  func(cfg *Config) { cfg.Slack.MaxIdle = -time.Minute },
			wantErr: "slack.max_idle",
		},
		{
			name:    "threshold at one",
			mutate:  func(cfg *Config) { cfg.Classifier.Threshold = 1 },
			wantErr: "classifier.threshold",
		},
		{
			name:    "threshold above one",
			mutate:  func(cfg *Config) { cfg.Classifier.Threshold = 1.5 },
			wantErr: "classifier.threshold",
		},
		{
			name: "corpus path and db together",
			mutate: func(cfg *Config) {
				cfg.Classifier.CorpusPath = "corpus.yaml"
				cfg.Classifier.CorpusDB = "corpus.db"
			},
			wantErr: "mutually exclusive",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
