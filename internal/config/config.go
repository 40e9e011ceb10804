package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env                string
	LogLevel           string
	Port               string
	RateLimit          string
	CORSAllowedOrigins []string
	PipelineAPIKey     string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret         string
	JWTExpirationDur  time.Duration
	RefreshExpiration time.Duration

	// Ledger
	LedgerMaxAttempts  int
	LedgerRetryBackoff time.Duration

	// Digest
	DigestTimezone string
	DigestHour     int
	DigestMinute   int

	// EmailJS
	EmailJSEndpoint   string
	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSUserID     string
	EmailJSPrivateKey string
}

var appConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("PIPELINE_API_KEY", "")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PATH", "danaku.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "danaku")
	v.SetDefault("DB_PASSWORD", "danaku")
	v.SetDefault("DB_NAME", "danaku")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_EXPIRES_IN", "15m")
	v.SetDefault("REFRESH_EXPIRES_IN", "168h")

	v.SetDefault("LEDGER_MAX_ATTEMPTS", 5)
	v.SetDefault("LEDGER_RETRY_BACKOFF", "20ms")

	v.SetDefault("DIGEST_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("DIGEST_HOUR", 23)
	v.SetDefault("DIGEST_MINUTE", 0)

	v.SetDefault("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("EMAILJS_SERVICE_ID", "")
	v.SetDefault("EMAILJS_TEMPLATE_ID", "")
	v.SetDefault("EMAILJS_USER_ID", "")
	v.SetDefault("EMAILJS_PRIVATE_KEY", "")
}

// Load loads configuration from the .env file (if any) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Env:            v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Port:           v.GetString("PORT"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		PipelineAPIKey: v.GetString("PIPELINE_API_KEY"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:     v.GetString("DB_PATH"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		LedgerMaxAttempts: v.GetInt("LEDGER_MAX_ATTEMPTS"),

		DigestTimezone: v.GetString("DIGEST_TIMEZONE"),
		DigestHour:     v.GetInt("DIGEST_HOUR"),
		DigestMinute:   v.GetInt("DIGEST_MINUTE"),

		EmailJSEndpoint:   v.GetString("EMAILJS_ENDPOINT"),
		EmailJSServiceID:  v.GetString("EMAILJS_SERVICE_ID"),
		EmailJSTemplateID: v.GetString("EMAILJS_TEMPLATE_ID"),
		EmailJSUserID:     v.GetString("EMAILJS_USER_ID"),
		EmailJSPrivateKey: v.GetString("EMAILJS_PRIVATE_KEY"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.CORSAllowedOrigins = append(config.CORSAllowedOrigins, origin)
		}
	}

	config.JWTExpirationDur = parseDuration(v, "JWT_EXPIRES_IN", 15*time.Minute)
	config.RefreshExpiration = parseDuration(v, "REFRESH_EXPIRES_IN", 7*24*time.Hour)
	config.LedgerRetryBackoff = parseDuration(v, "LEDGER_RETRY_BACKOFF", 20*time.Millisecond)

	if config.LedgerMaxAttempts < 1 {
		log.Printf("Warning: invalid LEDGER_MAX_ATTEMPTS value %d, falling back to 5\n", config.LedgerMaxAttempts)
		config.LedgerMaxAttempts = 5
	}

	switch config.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", config.DBDriver)
	}

	if config.DigestHour < 0 || config.DigestHour > 23 || config.DigestMinute < 0 || config.DigestMinute > 59 {
		return nil, fmt.Errorf("invalid digest time %02d:%02d", config.DigestHour, config.DigestMinute)
	}

	return config, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	dur, err := time.ParseDuration(raw)
	if err != nil || dur <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return dur
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// PostgresDSN returns the key/value connection string used by the GORM driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dsnValue(c.DBHost), dsnValue(c.DBPort), dsnValue(c.DBUser), dsnValue(c.DBPassword), dsnValue(c.DBName), dsnValue(c.DBSSLMode))
}

// dsnValue quotes a keyword/value DSN value when it is empty or holds
// spaces, quotes or backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// DigestLocation resolves DigestTimezone, falling back to a fixed UTC+7 zone
// when the tz database does not know it.
func (c *Config) DigestLocation() *time.Location {
	loc, err := time.LoadLocation(c.DigestTimezone)
	if err != nil {
		log.Printf("Warning: unknown DIGEST_TIMEZONE '%s', using UTC+7\n", c.DigestTimezone)
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}
