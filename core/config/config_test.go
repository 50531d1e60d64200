package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"RQ_HOST", "RQ_PORT", "RQ_HTTPS", "RQ_USER", "RQ_PASS", "RQ_CONSISTENCY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()
	if cfg.Host != DefaultHost {
		t.Errorf("host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.HTTPS {
		t.Error("https should default to false")
	}
	if cfg.Consistency != DefaultConsistency {
		t.Errorf("consistency = %q, want %q", cfg.Consistency, DefaultConsistency)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("RQ_HOST", "db.internal")
	t.Setenv("RQ_PORT", "4005")
	t.Setenv("RQ_HTTPS", "true")
	t.Setenv("RQ_USER", "admin")
	t.Setenv("RQ_PASS", "hunter2")
	t.Setenv("RQ_CONSISTENCY", "strong")

	cfg := LoadConfig()
	if cfg.Host != "db.internal" || cfg.Port != 4005 || !cfg.HTTPS {
		t.Errorf("connection settings not read from environment: %+v", cfg)
	}
	if cfg.User != "admin" || cfg.Pass != "hunter2" {
		t.Errorf("credentials not read from environment")
	}
	if cfg.Consistency != "strong" {
		t.Errorf("consistency = %q", cfg.Consistency)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Host: "localhost", Port: 4001, Consistency: "weak"}, false},
		{"empty host", Config{Host: "  ", Port: 4001, Consistency: "weak"}, true},
		{"port too low", Config{Host: "h", Port: 0, Consistency: "weak"}, true},
		{"port too high", Config{Host: "h", Port: 70000, Consistency: "weak"}, true},
		{"bad consistency", Config{Host: "h", Port: 4001, Consistency: "eventual"}, true},
		{"strong consistency", Config{Host: "h", Port: 4001, Consistency: "strong"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 4001}
	if got := cfg.BaseURL(); got != "http://localhost:4001" {
		t.Errorf("BaseURL() = %q", got)
	}

	cfg = Config{Host: "db.example.com", Port: 443, HTTPS: true, User: "u", Pass: "p"}
	if got := cfg.BaseURL(); got != "https://u:p@db.example.com:443" {
		t.Errorf("BaseURL() with auth = %q", got)
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	data := `connections:
  staging:
    host: staging.internal
    port: 4011
    https: true
    user: deploy
  minimal:
    consistency: strong
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	base := Config{Host: "localhost", Port: 4001, Consistency: "weak", Pass: "keepme"}

	cfg, err := LoadProfile(path, "staging", base)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}
	if cfg.Host != "staging.internal" || cfg.Port != 4011 || !cfg.HTTPS || cfg.User != "deploy" {
		t.Errorf("profile values not applied: %+v", cfg)
	}
	if cfg.Pass != "keepme" {
		t.Error("empty profile field should keep the base value")
	}
	if cfg.Consistency != "weak" {
		t.Errorf("consistency = %q, want base value", cfg.Consistency)
	}

	cfg, err = LoadProfile(path, "minimal", base)
	if err != nil {
		t.Fatalf("LoadProfile(minimal) error: %v", err)
	}
	if cfg.Consistency != "strong" || cfg.Host != "localhost" {
		t.Errorf("partial profile merge wrong: %+v", cfg)
	}

	if _, err := LoadProfile(path, "missing", base); err == nil {
		t.Error("expected error for unknown profile name")
	}
	if _, err := LoadProfile(filepath.Join(dir, "nope.yaml"), "staging", base); err == nil {
		t.Error("expected error for missing file")
	}
}
