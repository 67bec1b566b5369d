// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Assistant     AssistantConfig    `mapstructure:"assistant"`
	Actions       ActionsConfig      `mapstructure:"actions"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Assistant Config ---

// AssistantConfig controls classification and conversation context.
type AssistantConfig struct {
	ConfidenceThreshold float64         `mapstructure:"confidence_threshold"`
	ContextTurns        int             `mapstructure:"context_turns"`
	ContextTTL          int             `mapstructure:"context_ttl"` // seconds
	IntentAPI           IntentAPIConfig `mapstructure:"intent_api"`
}

// IntentAPIConfig configures the optional external model fallback. When
// disabled the classifier is purely rule-based.
type IntentAPIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// ActionsConfig controls the confirmable action staging windows.
type ActionsConfig struct {
	DefaultTTL   int            `mapstructure:"default_ttl"`   // seconds
	RetentionTTL int            `mapstructure:"retention_ttl"` // seconds, audit tombstone window
	TTLPerType   map[string]int `mapstructure:"ttl_per_type"`  // seconds, keyed by action type
	SweepEvery   int            `mapstructure:"sweep_every"`   // seconds, 0 disables the sweep
}

// TTLFor returns the staging window for an action type.
func (a ActionsConfig) TTLFor(actionType string) time.Duration {
	if secs, ok := a.TTLPerType[actionType]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Duration(a.DefaultTTL) * time.Second
}

// Retention returns how long terminal records are kept readable.
func (a ActionsConfig) Retention() time.Duration {
	return time.Duration(a.RetentionTTL) * time.Second
}

// --- Integrations ---

type NotificationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AWSRegion   string `mapstructure:"aws_region"`
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
	SESSender   string `mapstructure:"ses_sender"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
