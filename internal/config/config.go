package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Account  AccountConfig
	Company  CompanyConfig
	Mail     MailConfig
	Google   GoogleConfig
	CalDAV   CalDAVConfig
	Calendar CalendarConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects sqlite (local file) or postgres.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string // DATABASE_DSN, takes precedence over the discrete postgres fields
	Debug    bool
}

// DSN returns the driver connection string.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AppConfig struct {
	Env        string
	Dev        bool
	Migrations bool
	BaseURL    string
	QuotesDir  string
	JWTSecret  string
}

// AccountConfig is the single login seeded at startup.
type AccountConfig struct {
	Email    string
	Password string
	Name     string
}

// CompanyConfig is printed on quotes and receives signed copies.
type CompanyConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (g GoogleConfig) Configured() bool { return g.ClientID != "" && g.ClientSecret != "" }

type CalDAVConfig struct {
	URL         string
	CalendarURL string
	User        string
	Pass        string
}

func (c CalDAVConfig) Configured() bool { return c.URL != "" && c.User != "" && c.Pass != "" }

type CalendarConfig struct {
	Backend string // google, caldav or none
}

type JobsConfig struct {
	DigestSchedule string // cron spec, empty disables the digest
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	port := getEnv("PORT", "3000")
	baseURL := strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:"+port), "/")

	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:     getEnv("DB_PATH", "data/crm.sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "plombicrm"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			URL:      strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), `"'`),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:        getEnv("APP_ENV", "development"),
			Dev:        getEnvBool("DEV", false),
			Migrations: getEnvBool("RUN_MIGRATIONS", true),
			BaseURL:    baseURL,
			QuotesDir:  getEnv("QUOTES_DIR", "public/quotes"),
			JWTSecret:  getEnv("JWT_SECRET", "dev-secret"),
		},
		Account: AccountConfig{
			Email:    getEnv("ACCOUNT_EMAIL", "CRMplomberie"),
			Password: getEnv("ACCOUNT_PASSWORD", "change-me"),
			Name:     getEnv("ACCOUNT_NAME", "CRM Plomberie"),
		},
		Company: CompanyConfig{
			Name:    getEnv("COMPANY_NAME", "CRM Plomberie"),
			Address: getEnv("COMPANY_ADDRESS", "Adresse de l'entreprise"),
			Phone:   getEnv("COMPANY_PHONE", "Téléphone entreprise"),
			Email:   getEnv("COMPANY_EMAIL", "contact@entreprise.fr"),
		},
		Mail: MailConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnvInt("SMTP_PORT", 587),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: os.Getenv("SMTP_FROM"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URI", baseURL+"/auth/google/callback"),
		},
		CalDAV: CalDAVConfig{
			URL:         os.Getenv("ICLOUD_CALDAV_URL"),
			CalendarURL: os.Getenv("ICLOUD_CALDAV_CALENDAR_URL"),
			User:        os.Getenv("ICLOUD_CALDAV_USER"),
			Pass:        os.Getenv("ICLOUD_CALDAV_PASS"),
		},
		Jobs: JobsConfig{
			DigestSchedule: getEnvRaw("DIGEST_SCHEDULE", "30 7 * * *"),
		},
	}
	cfg.Calendar.Backend = calendarBackend(cfg)
	return cfg
}

func calendarBackend(cfg *Config) string {
	switch b := strings.ToLower(os.Getenv("CALENDAR_BACKEND")); b {
	case "google", "caldav", "none":
		return b
	case "":
	default:
		log.Printf("config: unknown CALENDAR_BACKEND %q, falling back to auto-detect", b)
	}
	if cfg.Google.Configured() {
		return "google"
	}
	if cfg.CalDAV.Configured() {
		return "caldav"
	}
	return "none"
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvRaw is getEnv where an explicitly empty value is kept.
func getEnvRaw(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return defaultVal
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		log.Printf("invalid integer for %s: %s", key, val)
	}
	return defaultVal
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, val)
			return defaultVal
		}
		return b
	}
	return defaultVal
}
