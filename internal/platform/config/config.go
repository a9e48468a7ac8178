package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile           = ".env"
	defaultAddr              = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultBackendTimeout    = 8 * time.Second
	defaultSessionIdle       = 30 * time.Minute
	defaultWorkspaceTTL      = 30 * time.Minute
	defaultSearchDebounce    = 500 * time.Millisecond
	defaultContactRatePerMin = 6
	defaultEnvironment       = "local"
	defaultLogLevel          = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Backend     BackendConfig
	Session     SessionConfig
	Directory   DirectoryConfig
	Contact     ContactConfig
	Map         MapConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the directory API. An empty BaseURL selects the in-process catalog.
type BackendConfig struct {
	BaseURL  string
	Timeout  time.Duration
	DataFile string
}

// SessionConfig controls the signed session cookie and per-session workspaces.
type SessionConfig struct {
	HashKey      []byte
	BlockKey     []byte
	Secure       bool
	IdleTimeout  time.Duration
	WorkspaceTTL time.Duration
}

// DirectoryConfig tunes the listing page.
type DirectoryConfig struct {
	SearchDebounce time.Duration
}

// ContactConfig tunes contact form submissions.
type ContactConfig struct {
	RatePerMinute int
}

// MapConfig carries map widget settings.
type MapConfig struct {
	APIKey string
}

// UsesBackend reports whether a remote directory API is configured.
func (c Config) UsesBackend() bool {
	return strings.TrimSpace(c.Backend.BaseURL) != ""
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides,
// environment variables and explicit values.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "LOCAL_WEB_ENV", defaultEnvironment)),
		LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
		Server: ServerConfig{
			Addr:         serverAddr(lookup),
			ReadTimeout:  durationWithDefault(lookup, "LOCAL_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "LOCAL_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "LOCAL_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Backend: BackendConfig{
			BaseURL:  strings.TrimRight(strings.TrimSpace(stringWithDefault(lookup, "LOCAL_WEB_BACKEND_URL", "")), "/"),
			Timeout:  durationWithDefault(lookup, "LOCAL_WEB_BACKEND_TIMEOUT", defaultBackendTimeout),
			DataFile: stringWithDefault(lookup, "LOCAL_WEB_DATA_FILE", ""),
		},
		Session: SessionConfig{
			HashKey:      []byte(stringWithDefault(lookup, "LOCAL_WEB_SESSION_HASH_KEY", "")),
			BlockKey:     []byte(stringWithDefault(lookup, "LOCAL_WEB_SESSION_BLOCK_KEY", "")),
			Secure:       boolWithDefault(lookup, "LOCAL_WEB_SESSION_SECURE", false),
			IdleTimeout:  durationWithDefault(lookup, "LOCAL_WEB_SESSION_IDLE_TIMEOUT", defaultSessionIdle),
			WorkspaceTTL: durationWithDefault(lookup, "LOCAL_WEB_WORKSPACE_TTL", defaultWorkspaceTTL),
		},
		Directory: DirectoryConfig{
			SearchDebounce: durationWithDefault(lookup, "LOCAL_WEB_SEARCH_DEBOUNCE", defaultSearchDebounce),
		},
		Contact: ContactConfig{
			RatePerMinute: intWithDefault(lookup, "LOCAL_WEB_CONTACT_RATE_PER_MINUTE", defaultContactRatePerMin),
		},
		Map: MapConfig{
			APIKey: stringWithDefault(lookup, "LOCAL_WEB_MAPS_API_KEY", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func serverAddr(lookup func(string) (string, bool)) string {
	if addr := stringWithDefault(lookup, "LOCAL_WEB_ADDR", ""); addr != "" {
		return addr
	}
	// Cloud Run injects PORT.
	if port := stringWithDefault(lookup, "PORT", ""); port != "" {
		return ":" + port
	}
	return defaultAddr
}

func validateConfig(cfg Config) error {
	var invalid []string
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		invalid = append(invalid, "Server.WriteTimeout")
	}
	if cfg.Backend.Timeout <= 0 {
		invalid = append(invalid, "Backend.Timeout")
	}
	if cfg.Backend.BaseURL != "" && !strings.HasPrefix(cfg.Backend.BaseURL, "http://") && !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		invalid = append(invalid, "Backend.BaseURL")
	}
	if n := len(cfg.Session.HashKey); n != 0 && n < 32 {
		invalid = append(invalid, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		invalid = append(invalid, "Session.BlockKey")
	}
	if cfg.Environment == "prod" && len(cfg.Session.HashKey) == 0 {
		invalid = append(invalid, "Session.HashKey")
	}
	if cfg.Directory.SearchDebounce < 0 {
		invalid = append(invalid, "Directory.SearchDebounce")
	}
	if cfg.Contact.RatePerMinute < 0 {
		invalid = append(invalid, "Contact.RatePerMinute")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
