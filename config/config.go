package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tubebrief/errors"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir  string `json:"log_dir"`
	TempDir string `json:"temp_dir"`

	// Middleware settings
	Middleware MiddlewareConfig `json:"middleware"`

	// CORS Configuration
	CORS CORSConfig `json:"cors"`

	// Rate Limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Database settings
	Database DatabaseConfig `json:"database"`

	// Gemini generation endpoint
	Gemini GeminiConfig `json:"gemini"`

	// Captions fetching
	Transcript TranscriptConfig `json:"transcript"`

	// Derived artifact generation
	Artifacts ArtifactsConfig `json:"artifacts"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableCompress  bool `json:"enable_compress"`
	EnableETag      bool `json:"enable_etag"`
}

type DatabaseConfig struct {
	Path           string `json:"path"`
	MaxConnections int    `json:"max_connections"`
}

type GeminiConfig struct {
	APIKey  string        `json:"-"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

// ProxyConfig describes an optional HTTP proxy for captions requests.
// All four fields must be set for the proxy to be used; a partial
// configuration degrades to direct access.
type ProxyConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"-"`
	Password string `json:"-"`
}

func (p ProxyConfig) Configured() bool {
	return p.Host != "" || p.Port != 0 || p.Username != "" || p.Password != ""
}

func (p ProxyConfig) Complete() bool {
	return p.Host != "" && p.Port != 0 && p.Username != "" && p.Password != ""
}

type TranscriptConfig struct {
	// Languages is the caption language priority list, first match wins.
	Languages         []string      `json:"languages"`
	FetchTimeout      time.Duration `json:"fetch_timeout"`
	RequestsPerMinute int           `json:"requests_per_minute"`

	Proxy ProxyConfig `json:"proxy"`

	// ScrapeProxyAPIKey enables an optional reachability probe through a
	// scraping proxy. Telemetry only; captions never route through it.
	ScrapeProxyAPIKey string `json:"-"`
}

type ArtifactsConfig struct {
	// TTL is how long generated audio/document files are kept before the
	// janitor removes them.
	TTL           time.Duration `json:"ttl"`
	SweepInterval time.Duration `json:"sweep_interval"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
}

func defaultDevMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false,
		EnableCORS:      true,
		EnableRateLimit: false,
		EnableCompress:  false,
		EnableETag:      false,
	}
}

func defaultProdMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableCompress:  true,
		EnableETag:      true,
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:  getEnv("LOG_DIR", "/var/log/tubebrief"),
		TempDir: getEnv("TEMP_DIR", "/tmp/tubebrief"),

		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORS: CORSConfig{
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
		},

		Database: DatabaseConfig{
			Path:           getEnv("DB_PATH", "/var/lib/tubebrief/data.db"),
			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 10),
		},

		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsDuration("SUMMARIZE_TIMEOUT", 60*time.Second),
		},

		Transcript: TranscriptConfig{
			Languages: getEnvAsStringSlice(
				"TRANSCRIPT_LANGUAGES",
				[]string{"en", "en-US", "es", "fr", "de", "pt", "hi", "zh"},
			),
			FetchTimeout:      getEnvAsDuration("TRANSCRIPT_FETCH_TIMEOUT", 30*time.Second),
			RequestsPerMinute: getEnvAsInt("TRANSCRIPT_RPM", 30),
			Proxy: ProxyConfig{
				Host:     getEnv("PROXY_HOST", ""),
				Port:     getEnvAsInt("PROXY_PORT", 0),
				Username: getEnv("PROXY_USERNAME", ""),
				Password: getEnv("PROXY_PASSWORD", ""),
			},
			ScrapeProxyAPIKey: getEnv("SCRAPE_PROXY_API_KEY", ""),
		},

		Artifacts: ArtifactsConfig{
			TTL:           getEnvAsDuration("ARTIFACT_TTL", time.Hour),
			SweepInterval: getEnvAsDuration("ARTIFACT_SWEEP_INTERVAL", 10*time.Minute),
		},

		Middleware: defaultDevMiddleware(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdMiddleware()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	const op = "config.Validate"

	if c.Gemini.APIKey == "" {
		return errors.Configuration(op, nil,
			"GEMINI_API_KEY is not set; export it or add it to a .env file")
	}

	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	if len(c.Transcript.Languages) == 0 {
		return errors.Configuration(op, nil, "transcript language priority list must not be empty")
	}

	return nil
}

func validatePaths(c *Config) error {
	const op = "config.validatePaths"

	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.TempDir, "temp directory"},
		{filepath.Dir(c.Database.Path), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return errors.Configuration(op, err, fmt.Sprintf("failed to create %s", p.name))
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	const op = "config.validateTimeouts"

	if c.ReadTimeout <= 0 {
		return errors.Configuration(op, nil, "read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.Configuration(op, nil, "write timeout must be positive")
	}
	if c.Transcript.FetchTimeout <= 0 {
		return errors.Configuration(op, nil, "transcript fetch timeout must be positive")
	}
	if c.Gemini.Timeout <= 0 {
		return errors.Configuration(op, nil, "summarize timeout must be positive")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
