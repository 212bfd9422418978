package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	LLM      LLMConfig
	Workflow WorkflowConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	CORSOrigins     []string      `validate:"dive,required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

type DatabaseConfig struct {
	DSN      string `validate:"required"`
	MaxConns int32  `validate:"gte=1,lte=500"`
}

type RedisConfig struct {
	// empty Addr runs with in-process locks and no event publishing
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
	DB       int `validate:"gte=0,lte=15"`
}

type FirebaseConfig struct {
	AuthMode        string `validate:"oneof=firebase header"`
	CredentialsPath string `validate:"required_if=AuthMode firebase"`
	ProjectID       string
}

type LLMConfig struct {
	Provider  string `validate:"oneof=ollama gemini"`
	Model     string
	OllamaURL string  `validate:"required_if=Provider ollama,omitempty,url"`
	GeminiKey string  `validate:"required_if=Provider gemini"`
	RPS       float64 `validate:"gte=0"`
	Burst     int     `validate:"gte=0"`
}

type WorkflowConfig struct {
	Timeout        time.Duration `validate:"gt=0"`
	StaleSweepSpec string        `validate:"required"`
	StaleAfter     time.Duration `validate:"gt=0"`
}

type AppConfig struct {
	Environment string `validate:"oneof=development staging production test"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json console"`
	Version     string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateAuthMode, Config{})
	return v
}

// validateAuthMode allows header auth only outside deployed environments.
func validateAuthMode(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Firebase.AuthMode != "header" {
		return
	}
	switch c.App.Environment {
	case "development", "test":
		return
	}
	sl.ReportError(c.Firebase.AuthMode, "Firebase.AuthMode", "AuthMode", "header_auth_env", c.App.Environment)
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			AuthMode:        getEnv("AUTH_MODE", "firebase"),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "ollama"),
			Model:     getEnv("LLM_MODEL", ""),
			OllamaURL: getEnv("OLLAMA_URL", "http://localhost:11434"),
			GeminiKey: getEnv("GEMINI_API_KEY", ""),
			RPS:       getEnvAsFloat("LLM_RPS", 0),
			Burst:     getEnvAsInt("LLM_BURST", 1),
		},
		Workflow: WorkflowConfig{
			Timeout:        getEnvAsDuration("WORKFLOW_TIMEOUT", 3*time.Minute),
			StaleSweepSpec: getEnv("STALE_SWEEP_SPEC", "@every 5m"),
			StaleAfter:     getEnvAsDuration("STALE_AFTER", 10*time.Minute),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
