package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DispatchConfig is the engine's tunable surface, read once at construction.
type DispatchConfig struct {
	DedupWindow      time.Duration     `mapstructure:"dedup_window"`
	DedupMaxEntries  int               `mapstructure:"dedup_max_entries"`
	TenantQuota      int               `mapstructure:"tenant_quota"`
	QuotaWindow      time.Duration     `mapstructure:"quota_window"`
	MaxAttempts      int               `mapstructure:"max_attempts"`
	RetryInterval    time.Duration     `mapstructure:"retry_interval"`
	Store            string            `mapstructure:"store"` // "memory" or "redis"
	SuppressionRules []SuppressionRule `mapstructure:"suppression_rules"`
	RuleFallback     string            `mapstructure:"rule_fallback"` // "allow" or "deny" on evaluation error
}

type SuppressionRule struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
}

type ChannelsConfig struct {
	Paging WebhookConfig `mapstructure:"paging"`
	Chat   WebhookConfig `mapstructure:"chat"`
	Email  EmailConfig   `mapstructure:"email"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	Topic string `mapstructure:"topic"`
}

type BrokerConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Kafka   KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	GroupID    string   `mapstructure:"group_id"`
	InputTopic string   `mapstructure:"input_topic"`
	DLQTopic   string   `mapstructure:"dlq_topic"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig covers the HTTP ingestion surface only. The per-tenant
// alert quota lives in DispatchConfig.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}
