package studybuddy

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Models is the catalog of chat models offered by the app. Identifiers
// starting with "gpt" are served by OpenAI, everything else by Groq.
var Models = []string{
	"openai/gpt-oss-120b",
	"openai/gpt-oss-20b",
	"gpt-4o-mini",
	"meta-llama/llama-4-maverick-17b-128e-instruct",
	"meta-llama/llama-4-scout-17b-16e-instruct",
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
}

// DefaultModel is the model preselected by the binaries
var DefaultModel = Models[len(Models)-1]

// Settings holds runtime configuration loaded from the environment
type Settings struct {
	OpenAIAPIKey string
	GroqAPIKey   string
	Temperature  float32
	MaxRetries   int
	DBPath       string
	ResultsDir   string
	LogDir       string
}

// LoadSettings reads configuration from a .env file (if present) and the
// environment. A missing .env file is not an error; missing API keys are
// only an error once the corresponding model family is actually used.
func LoadSettings() (*Settings, error) {
	// Ignore a missing .env; env vars may be set directly
	_ = godotenv.Load()

	s := &Settings{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		Temperature:  0.9,
		MaxRetries:   3,
		DBPath:       envOr("STUDYBUDDY_DB", "./studybuddy.db"),
		ResultsDir:   envOr("STUDYBUDDY_RESULTS_DIR", "results"),
		LogDir:       envOr("STUDYBUDDY_LOG_DIR", "log"),
	}

	if raw := os.Getenv("STUDYBUDDY_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid STUDYBUDDY_MAX_RETRIES %q", raw)
		}
		s.MaxRetries = n
	}

	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
