package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Messages holds overridable user-facing texts
type Messages struct {
	ErrorMessage   string `yaml:"errorMessage"`
	PersistFailure string `yaml:"persistFailure"`
}

// Settings describes the shop as presented to users
type Settings struct {
	BotName          string   `yaml:"botName"`
	Currency         string   `yaml:"currency"`
	PaymentMethod    string   `yaml:"paymentMethod"`
	DefaultImage     string   `yaml:"defaultImage"`
	CartImage        string   `yaml:"cartImage"`
	CheckoutImage    string   `yaml:"checkoutImage"`
	DeliveryEstimate string   `yaml:"deliveryEstimate"`
	Messages         Messages `yaml:"messages"`
}

// DefaultSettings are used for anything the settings file leaves out
func DefaultSettings() Settings {
	return Settings{
		BotName:          "Shop Bot",
		Currency:         "$",
		PaymentMethod:    "Cash on Delivery",
		DeliveryEstimate: "3-5 business days",
		Messages: Messages{
			ErrorMessage:   `Sorry, I encountered an error processing your request. Please try again or type "menu" to return to the main menu.`,
			PersistFailure: "Sorry, we could not save your progress just now. Please send your last message again.",
		},
	}
}

// DatabaseConfig holds the SQL connection settings
type DatabaseConfig struct {
	User                   string
	Password               string
	Name                   string
	Host                   string
	Port                   int
	InstanceConnectionName string
	SQLitePath             string
}

// TwilioConfig holds the WhatsApp sender credentials
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

// Configured reports whether outbound messaging can be enabled
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.WhatsAppFrom != ""
}

// Config is the full process configuration
type Config struct {
	Port                     string
	Environment              string
	LogMode                  string
	CatalogFile              string
	SettingsFile             string
	SessionStore             string
	RedisAddr                string
	RedisPrefix              string
	AdminAPIKey              string
	DisableWebhookValidation bool
	TypingDelay              time.Duration
	IdleTimeout              time.Duration
	MenuReturnDelay          time.Duration
	AnalyticsRetention       int
	AnalyticsPruneInterval   time.Duration
	Database                 DatabaseConfig
	Twilio                   TwilioConfig
	Settings                 Settings
}

// IsDevelopment reports whether the process runs outside production
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// UsesDatabase reports whether a SQL database backs the stores
func (c *Config) UsesDatabase() bool {
	return c.SessionStore == StorePostgres || c.SessionStore == StoreSQLite
}

// LoadEnvFiles loads .env files for local development. Missing files are
// not an error; the environment may already be populated.
func LoadEnvFiles() bool {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return false
	}
	if err := godotenv.Load(".env"); err == nil {
		return true
	}
	return godotenv.Load("environments/.env.development") == nil
}

// Load reads the configuration from the environment and the settings file
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     String("PORT", "8080"),
		Environment:              String("ENVIRONMENT", "production"),
		LogMode:                  String("LOG_MODE", "development"),
		CatalogFile:              String("CATALOG_FILE", "database.json"),
		SettingsFile:             String("SETTINGS_FILE", "settings.yaml"),
		SessionStore:             strings.ToLower(String("SESSION_STORE", StoreMemory)),
		RedisAddr:                String("REDIS_ADDR", ""),
		RedisPrefix:              String("REDIS_PREFIX", "shopbot:session:"),
		AdminAPIKey:              String("ADMIN_API_KEY", ""),
		DisableWebhookValidation: Bool("DISABLE_WEBHOOK_VALIDATION", false),
		TypingDelay:              Duration("TYPING_DELAY", 2*time.Second),
		IdleTimeout:              Duration("IDLE_TIMEOUT", time.Hour),
		MenuReturnDelay:          Duration("MENU_RETURN_DELAY", 2*time.Second),
		AnalyticsRetention:       Int("ANALYTICS_RETENTION", 1000),
		AnalyticsPruneInterval:   Duration("ANALYTICS_PRUNE_INTERVAL", 10*time.Minute),
		Database: DatabaseConfig{
			User:                   String("DB_USER", "postgres"),
			Password:               String("DB_PASS", ""),
			Name:                   String("DB_NAME", "shopbot"),
			Host:                   String("DB_HOST", "localhost"),
			Port:                   Int("DB_PORT", 5432),
			InstanceConnectionName: String("INSTANCE_CONNECTION_NAME", ""),
			SQLitePath:             String("SQLITE_PATH", "shopbot.db"),
		},
		Twilio: TwilioConfig{
			AccountSID:   String("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    String("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom: String("TWILIO_WHATSAPP_FROM", ""),
		},
	}

	settings, err := LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations the process cannot start with
func (c *Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory, StorePostgres, StoreSQLite:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("SESSION_STORE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IDLE_TIMEOUT must be positive")
	}
	if c.AnalyticsRetention < 0 {
		return fmt.Errorf("ANALYTICS_RETENTION must not be negative")
	}
	return nil
}

// LoadSettings reads the YAML settings file over the defaults. A missing
// file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", path, err)
	}
	defaults := DefaultSettings()
	if settings.Messages.ErrorMessage == "" {
		settings.Messages.ErrorMessage = defaults.Messages.ErrorMessage
	}
	if settings.Messages.PersistFailure == "" {
		settings.Messages.PersistFailure = defaults.Messages.PersistFailure
	}
	return settings, nil
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Duration accepts Go durations ("90s") or a bare number of seconds
func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
