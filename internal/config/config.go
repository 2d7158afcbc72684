package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Messaging MessagingConfig
	CallQueue CallQueueConfig
	Reminders ReminderConfig
	Logging   LoggingConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	TemplateTTL time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type MessagingConfig struct {
	SMSGatewayURL        string
	SMSGatewayToken      string
	SMSSender            string
	WhatsAppGatewayURL   string
	WhatsAppGatewayToken string
	WhatsAppEnabled      bool
	GatewayTimeout       time.Duration
}

type CallQueueConfig struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	FollowUpDelay time.Duration
	DefaultLimit  int
}

type ReminderConfig struct {
	DaysAhead       int
	TemplateKey     string
	ReminderCron    string
	OverdueCron     string
	Timezone        string
	RemindersSource string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type HealthConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "pledges")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TEMPLATE_CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_EXCHANGE", "callcenter.messages")
	v.SetDefault("RABBITMQ_QUEUE", "callcenter.outbound")
	v.SetDefault("SMS_SENDER", "PLEDGE")
	v.SetDefault("WHATSAPP_ENABLED", true)
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("CALL_MAX_ATTEMPTS", 5)
	v.SetDefault("CALL_RETRY_DELAY", "4h")
	v.SetDefault("CALL_FOLLOWUP_DELAY", "72h")
	v.SetDefault("CALL_QUEUE_LIMIT", 50)
	v.SetDefault("REMINDER_DAYS_AHEAD", 3)
	v.SetDefault("REMINDER_TEMPLATE_KEY", "installment_reminder")
	v.SetDefault("REMINDER_CRON", "0 0 9 * * *")
	v.SetDefault("OVERDUE_CRON", "0 5 0 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Africa/Addis_Ababa")
	v.SetDefault("REMINDER_SOURCE", "payment_reminder")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	config := fromViper(v)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			TemplateTTL: v.GetDuration("TEMPLATE_CACHE_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
		Messaging: MessagingConfig{
			SMSGatewayURL:        v.GetString("SMS_GATEWAY_URL"),
			SMSGatewayToken:      v.GetString("SMS_GATEWAY_TOKEN"),
			SMSSender:            v.GetString("SMS_SENDER"),
			WhatsAppGatewayURL:   v.GetString("WHATSAPP_GATEWAY_URL"),
			WhatsAppGatewayToken: v.GetString("WHATSAPP_GATEWAY_TOKEN"),
			WhatsAppEnabled:      v.GetBool("WHATSAPP_ENABLED"),
			GatewayTimeout:       v.GetDuration("GATEWAY_TIMEOUT"),
		},
		CallQueue: CallQueueConfig{
			MaxAttempts:   v.GetInt("CALL_MAX_ATTEMPTS"),
			RetryDelay:    v.GetDuration("CALL_RETRY_DELAY"),
			FollowUpDelay: v.GetDuration("CALL_FOLLOWUP_DELAY"),
			DefaultLimit:  v.GetInt("CALL_QUEUE_LIMIT"),
		},
		Reminders: ReminderConfig{
			DaysAhead:       v.GetInt("REMINDER_DAYS_AHEAD"),
			TemplateKey:     v.GetString("REMINDER_TEMPLATE_KEY"),
			ReminderCron:    v.GetString("REMINDER_CRON"),
			OverdueCron:     v.GetString("OVERDUE_CRON"),
			Timezone:        v.GetString("SCHEDULER_TIMEZONE"),
			RemindersSource: v.GetString("REMINDER_SOURCE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.CallQueue.MaxAttempts <= 0 {
		return fmt.Errorf("CALL_MAX_ATTEMPTS must be greater than 0")
	}

	if c.CallQueue.RetryDelay <= 0 {
		return fmt.Errorf("CALL_RETRY_DELAY must be a positive duration")
	}

	if c.Reminders.DaysAhead < 0 {
		return fmt.Errorf("REMINDER_DAYS_AHEAD must not be negative")
	}

	if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if c.IsProduction() && c.Messaging.SMSGatewayURL == "" {
		return fmt.Errorf("SMS_GATEWAY_URL is required in production")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// DSN returns the Postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Addr returns the Redis host:port address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// QueuingEnabled reports whether outbound messages can be deferred to RabbitMQ
func (c *Config) QueuingEnabled() bool {
	return c.RabbitMQ.URL != ""
}

// Location returns the scheduler timezone, defaulting to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reminders.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
