package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Session  SessionConfig
	Keys     APIKeys
	Ai       AIConfig
	Services ServicesConfig
	Calendar CalendarConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	ReminderLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	TaskTopic          string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type SessionConfig struct {
	TTL        time.Duration
	MaxHistory int
	KeyPrefix  string
	// Durable mirror in redis. When false the store runs memory-only from the start.
	UseRedis bool
}

type APIKeys struct {
	GoogleGemini string
	DeepSeek     string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "deepseek", "gemini"
	LLMModel       string
	OllamaBaseURL  string
	DeepSeekURL    string
	GeminiModel    string
	AudioModel     string
	RequestTimeout time.Duration
}

type ServicesConfig struct {
	MemoryBaseURL string
	MemoryTimeout time.Duration
}

type CalendarConfig struct {
	GoogleClientID        string
	GoogleClientSecret    string
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftTenant       string
	RedirectURL           string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ReminderLogPath:    getEnv("REMINDER_LOG_FILE_PATH", "logs/reminders.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TaskTopic:          getEnv("TASK_TOPIC", "task.created"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Jenny"),
		},
		Session: SessionConfig{
			TTL:        getEnvAsDuration("SESSION_TTL", 1800*time.Second),
			MaxHistory: getEnvAsInt("SESSION_MAX_HISTORY", 20),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "jenny:session:"),
			UseRedis:   getEnvAsBool("SESSION_USE_REDIS", true),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			DeepSeek:     getEnv("DEEPSEEK_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DeepSeekURL:    getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			AudioModel:     getEnv("GEMINI_AUDIO_MODEL", "gemini-1.5-flash"),
			RequestTimeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Services: ServicesConfig{
			MemoryBaseURL: getEnv("MEMORY_SERVICE_URL", "http://localhost:8001"),
			MemoryTimeout: getEnvAsDuration("MEMORY_SERVICE_TIMEOUT", 15*time.Second),
		},
		Calendar: CalendarConfig{
			GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
			MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
			MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),
			MicrosoftTenant:       getEnv("MICROSOFT_TENANT", "common"),
			RedirectURL:           getEnv("CALENDAR_REDIRECT_URL", "http://localhost:8000/api/calendar/v1/callback"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// Accepts Go durations ("30m") or plain seconds ("1800").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
