package gradequiz

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the CLI and the web server
type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	ProviderTimeout time.Duration

	Port          string
	DBPath        string // empty disables generation history
	SessionSecret string
	LLMLogDir     string // empty disables per-call LLM logs
	Verbose       bool
}

// LoadConfig reads an optional .env file and then the environment
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	timeout, err := time.ParseDuration(envOr("PROVIDER_TIMEOUT", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	return Config{
		APIKey:          os.Getenv("OPENAI_API_KEY"),
		Model:           envOr("OPENAI_MODEL", "gpt-4o"),
		BaseURL:         os.Getenv("OPENAI_BASE_URL"),
		ProviderTimeout: timeout,
		Port:            envOr("PORT", "8180"),
		DBPath:          envOr("DB_PATH", "./quiz.db"),
		SessionSecret:   envOr("SESSION_SECRET", "change-me-in-production"),
		LLMLogDir:       envOr("LLM_LOG_DIR", "log"),
		Verbose:         envBool("VERBOSE", false),
	}, nil
}

// Validate checks the settings every entry point needs
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}
	return nil
}

func envOr(k, def string) string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
