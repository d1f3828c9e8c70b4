package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
// A .env file in the working directory is loaded first when present.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Content generation
	LLMProvider    string // gemini | anthropic | mock
	GeminiAPIKey   string
	GeminiBaseURL  string
	GeminiModel    string
	AnthropicModel string

	// Remote code execution
	ExecClientID     string
	ExecClientSecret string
	ExecBaseURL      string

	// Background job runner
	JobWorkers     int
	JobStepRetries int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using environment variables only")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "studyforge_user"),
		DBPassword: getEnv("DB_PASSWORD", "studyforge_password"),
		DBName:     getEnv("DB_NAME", "studyforge"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		LLMProvider:    getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:    getEnv("GEMINI_MODEL_NAME", "models/gemini-1.5-flash"),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		ExecClientID:     getEnv("EXEC_CLIENT_ID", ""),
		ExecClientSecret: getEnv("EXEC_CLIENT_SECRET", ""),
		ExecBaseURL:      getEnv("EXEC_BASE_URL", "https://api.jdoodle.com/v1"),

		JobWorkers:     getEnvInt("JOB_WORKERS", 4),
		JobStepRetries: getEnvInt("JOB_STEP_RETRIES", 3),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
