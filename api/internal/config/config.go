package config

import (
	"net"
	"net/url"
	"os"
	"strings"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string

	TelegramBotToken string
	WebhookURL       string

	DatabaseURL string

	CalendarCredentialsFile string
	CalendarID              string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		// key presence is checked at analysis time, not here
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		DatabaseURL: resolveDSN(),

		CalendarCredentialsFile: os.Getenv("CALENDAR_CREDENTIALS_FILE"),
		CalendarID:              os.Getenv("CALENDAR_ID"),
	}
}

// resolveDSN prefers DATABASE_URL, then builds a DSN from POSTGRES_* / PG*
// vars. Empty means "run without a database".
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	host := strings.TrimSpace(os.Getenv("PGHOST"))
	if host == "" {
		return ""
	}
	user := getEnv("POSTGRES_USER", "printbot")
	pass := os.Getenv("POSTGRES_PASSWORD")
	port := getEnv("PGPORT", "5432")
	db := getEnv("POSTGRES_DB", "printbot")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
