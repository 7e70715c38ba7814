package server

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every credential and knob the daemon needs. All of it comes
// from the environment (optionally seeded from a .env file) and is validated
// once at startup.
type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GitHubToken  string
	HerokuAPIKey string

	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableTableName string

	WebhookURL string

	DefaultRepoName string
	Addr            string

	ReleasePollInterval time.Duration
	ReleasePollAttempts int
}

var requiredEnv = []string{
	"OPENAI_API_KEY",
	"GITHUB_TOKEN",
	"HEROKU_API_KEY",
	"AIRTABLE_API_KEY",
	"AIRTABLE_BASE_ID",
	"AIRTABLE_TABLE_NAME",
	"MAKE_WEBHOOK_URL",
}

// LoadConfig reads the daemon configuration from the environment. A missing
// .env file is fine, a missing required variable is not.
func LoadConfig() (Config, error) {
	godotenv.Load()

	for _, key := range requiredEnv {
		if os.Getenv(key) == "" {
			return Config{}, fmt.Errorf("%s not set, set it in the environment or a .env file", key)
		}
	}

	config := Config{
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		HerokuAPIKey:        os.Getenv("HEROKU_API_KEY"),
		AirtableAPIKey:      os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:      os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTableName:   os.Getenv("AIRTABLE_TABLE_NAME"),
		WebhookURL:          os.Getenv("MAKE_WEBHOOK_URL"),
		DefaultRepoName:     os.Getenv("LIFTOFF_REPO_NAME"),
		Addr:                os.Getenv("LIFTOFF_ADDR"),
		ReleasePollInterval: 5 * time.Second,
		ReleasePollAttempts: 36,
	}

	if config.OpenAIModel == "" {
		config.OpenAIModel = "gpt-4"
	}

	if config.DefaultRepoName == "" {
		config.DefaultRepoName = "generated-streamlit-app"
	}

	if config.Addr == "" {
		config.Addr = "127.0.0.1:5670"
	}

	return config, nil
}
