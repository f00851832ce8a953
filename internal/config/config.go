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

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Orders    OrdersConfig
	Jobs      JobsConfig
	SMTP      SMTPConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

// DSN returns a postgres connection URL for the pgx stdlib driver.
func (c DatabaseConfig) DSN() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (c RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

type OrdersConfig struct {
	// DecrementStock makes order creation consume product stock.
	DecrementStock bool
}

// JobsConfig drives the periodic job entry points. Scheduling itself is done
// by an external cron; Schedules only feeds the crontab emitter.
type JobsConfig struct {
	EndpointURL    string
	LogSink        string
	Binary         string
	RequestTimeout time.Duration
	Retries        int
	Schedules      Schedules
}

type Schedules struct {
	Heartbeat string
	Restock   string
	Report    string
	Reminders string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether reminder mail can be sent.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("ORDERS_DECREMENT_STOCK", false)
	v.SetDefault("JOBS_ENDPOINT_URL", "http://localhost:8080")
	v.SetDefault("JOBS_LOG_SINK", "")
	v.SetDefault("JOBS_BINARY", "crmjob")
	v.SetDefault("JOBS_REQUEST_TIMEOUT", "10s")
	v.SetDefault("JOBS_RETRIES", 3)
	v.SetDefault("SCHEDULE_HEARTBEAT", "0 * * * *")
	v.SetDefault("SCHEDULE_RESTOCK", "0 */12 * * *")
	v.SetDefault("SCHEDULE_REPORT", "0 6 * * 1")
	v.SetDefault("SCHEDULE_REMINDERS", "0 8 * * *")
	v.SetDefault("SMTP_PORT", 587)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Orders: OrdersConfig{
			DecrementStock: v.GetBool("ORDERS_DECREMENT_STOCK"),
		},
		Jobs: JobsConfig{
			EndpointURL:    strings.TrimRight(v.GetString("JOBS_ENDPOINT_URL"), "/"),
			LogSink:        v.GetString("JOBS_LOG_SINK"),
			Binary:         v.GetString("JOBS_BINARY"),
			RequestTimeout: v.GetDuration("JOBS_REQUEST_TIMEOUT"),
			Retries:        v.GetInt("JOBS_RETRIES"),
			Schedules: Schedules{
				Heartbeat: v.GetString("SCHEDULE_HEARTBEAT"),
				Restock:   v.GetString("SCHEDULE_RESTOCK"),
				Report:    v.GetString("SCHEDULE_REPORT"),
				Reminders: v.GetString("SCHEDULE_REMINDERS"),
			},
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
	}
}

// Validate checks the job schedules are 5-field cron expressions.
func (s Schedules) Validate() error {
	specs := map[string]string{
		"heartbeat": s.Heartbeat,
		"restock":   s.Restock,
		"report":    s.Report,
		"reminders": s.Reminders,
	}
	for name, spec := range specs {
		if len(strings.Fields(spec)) != 5 {
			return fmt.Errorf("invalid %s schedule %q: expected 5 cron fields", name, spec)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
