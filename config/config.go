package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the service configuration loaded from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string

	SupabaseURL           string
	SupabaseJWTSecret     string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	RedisURL            string
	WizardSessionTTL    time.Duration
	LaunchRedirectDelay time.Duration

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string
	PublicBaseURL        string
	ReminderCron         string

	Web3FormsAccessKey string
	Web3FormsEndpoint  string
}

// Load reads .env (when present) and the environment, then checks that the
// required values are set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		SupabaseURL:           strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "invitations"),

		RedisURL:            getEnv("REDIS_URL", ""),
		WizardSessionTTL:    getEnvAsDuration("WIZARD_SESSION_TTL", 24*time.Hour),
		LaunchRedirectDelay: getEnvAsDuration("LAUNCH_REDIRECT_DELAY", 2*time.Second),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:    getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioWhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		PublicBaseURL:        strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		ReminderCron:         getEnv("REMINDER_CRON", "0 9 * * *"),

		Web3FormsAccessKey: getEnv("WEB3FORMS_ACCESS_KEY", ""),
		Web3FormsEndpoint:  getEnv("WEB3FORMS_ENDPOINT", "https://api.web3forms.com/submit"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DB_URL")
	}
	if c.SupabaseJWTSecret == "" {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// TwilioEnabled reports whether outbound messaging is configured.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

// StorageEnabled reports whether invitation images can be uploaded.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Int("default", def).Msg("invalid int, using default")
			return def
		}
		return i
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Dur("default", def).Msg("invalid duration, using default")
			return def
		}
		return d
	}
	return def
}

func getEnvAsList(key string, def []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
