package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`

	// Dashboard gate: a single CPA principal. The password is stored as a
	// bcrypt hash, never in plain text.
	AdminEmail        string `yaml:"admin_email"`
	AdminPasswordHash string `yaml:"admin_password_hash"`

	Workers int          `yaml:"workers"`
	Mailer  MailerConfig `yaml:"mailer"`
	Draft   DraftConfig  `yaml:"draft"`
}

type MailerConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	APIKey                  string        `yaml:"api_key"`
	FromEmail               string        `yaml:"from_email"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

type DraftConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:              getEnv("ASKCPA_ADDR", ":8080"),
		JWTSecret:         getEnv("ASKCPA_JWT_SECRET", "supersecretkey"),
		APITimeout:        15 * time.Second,
		DatabasePath:      getEnv("ASKCPA_DATABASE_PATH", "askcpa.db"),
		TokenDuration:     1 * time.Hour,
		AdminEmail:        getEnv("ASKCPA_ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ASKCPA_ADMIN_PASSWORD_HASH", ""),
		Workers:           2,
		Mailer: MailerConfig{
			BaseURL:                 getEnv("ASKCPA_MAILER_BASE_URL", "https://api.sendgrid.com"),
			APIKey:                  getEnv("ASKCPA_SENDGRID_API_KEY", ""),
			FromEmail:               getEnv("ASKCPA_FROM_EMAIL", "chris@azeasycpa.com"),
			Timeout:                 10 * time.Second,
			Retries:                 2,
			Backoff:                 500 * time.Millisecond,
			CircuitFailureThreshold: 5,
			CircuitReset:            30 * time.Second,
		},
		Draft: DraftConfig{
			BaseURL: getEnv("ASKCPA_OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:   getEnv("ASKCPA_DRAFT_MODEL", ""),
			Timeout: 60 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks required settings. The mailer API key is deliberately not
// required here: a missing key surfaces as a configuration error on first
// send, so the service can run without outbound email in development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}

	env := getEnv("ASKCPA_ENV", "development")
	if env != "development" {
		if c.JWTSecret == "" || c.JWTSecret == "supersecretkey" {
			return fmt.Errorf("jwt_secret must be set to a non-default value in %s", env)
		}
		if c.AdminEmail == "" || c.AdminPasswordHash == "" {
			return fmt.Errorf("admin_email and admin_password_hash are required in %s", env)
		}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
