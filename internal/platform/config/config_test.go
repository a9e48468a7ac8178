package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.UsesBackend() {
		t.Errorf("expected in-process catalog when no backend url is set")
	}
	if cfg.Directory.SearchDebounce != 500*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.Directory.SearchDebounce)
	}
	if cfg.Contact.RatePerMinute != defaultContactRatePerMin {
		t.Errorf("unexpected contact rate: %d", cfg.Contact.RatePerMinute)
	}
	if cfg.Environment != "local" {
		t.Errorf("expected local environment, got %s", cfg.Environment)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"LOCAL_WEB_BACKEND_URL":      "https://api.example.com/",
		"LOCAL_WEB_BACKEND_TIMEOUT":  "3s",
		"LOCAL_WEB_SEARCH_DEBOUNCE":  "250ms",
		"LOCAL_WEB_SESSION_SECURE":   "yes",
		"LOCAL_WEB_SESSION_HASH_KEY": "0123456789abcdef0123456789abcdef",
		"PORT":                       "9090",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Backend.BaseURL)
	}
	if !cfg.UsesBackend() {
		t.Errorf("expected backend to be used")
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("unexpected backend timeout: %s", cfg.Backend.Timeout)
	}
	if cfg.Directory.SearchDebounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.Directory.SearchDebounce)
	}
	if !cfg.Session.Secure {
		t.Errorf("expected secure cookies")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Addr)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nexport LOCAL_WEB_ADDR=\":7070\"\nLOCAL_WEB_MAPS_API_KEY='maps-key'\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"LOCAL_WEB_MAPS_API_KEY": "override"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected addr from .env, got %s", cfg.Server.Addr)
	}
	if cfg.Map.APIKey != "override" {
		t.Errorf("expected env map to win over .env, got %s", cfg.Map.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"LOCAL_WEB_BACKEND_URL":       "ftp://nope",
		"LOCAL_WEB_SESSION_HASH_KEY":  "short",
		"LOCAL_WEB_SESSION_BLOCK_KEY": "abc",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := vErr.Fields()
	want := []string{"Backend.BaseURL", "Session.HashKey", "Session.BlockKey"}
	if len(fields) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: expected %s, got %s", i, want[i], fields[i])
		}
	}
}

func TestProdRequiresSessionKey(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{"LOCAL_WEB_ENV": "prod"}), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
