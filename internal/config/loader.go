package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"beacon/internal/constants"
)

func Load(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("dispatch.dedup_window", constants.DefaultDedupWindow)
	viper.SetDefault("dispatch.dedup_max_entries", constants.DefaultDedupMaxEntries)
	viper.SetDefault("dispatch.tenant_quota", constants.DefaultQuotaPerTenant)
	viper.SetDefault("dispatch.quota_window", constants.DefaultQuotaWindow)
	viper.SetDefault("dispatch.max_attempts", constants.DefaultCriticalAttempts)
	viper.SetDefault("dispatch.retry_interval", constants.DefaultRetryInterval)
	viper.SetDefault("dispatch.store", constants.StoreMemory)
	viper.SetDefault("dispatch.rule_fallback", constants.FallbackAllow)

	viper.SetDefault("channels.paging.timeout", constants.DefaultChannelTimeout)
	viper.SetDefault("channels.chat.timeout", constants.DefaultChannelTimeout)
	viper.SetDefault("channels.email.topic", constants.DefaultEmailTopic)

	viper.SetDefault("broker.kafka.input_topic", constants.DefaultAlertTopic)

	viper.SetDefault("rate_limit.rps", 10.0)
	viper.SetDefault("rate_limit.burst", 20)
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("dispatch.store", "DISPATCH_STORE")
	viper.BindEnv("dispatch.tenant_quota", "DISPATCH_TENANT_QUOTA")

	viper.BindEnv("channels.paging.url", "CHANNELS_PAGING_URL")
	viper.BindEnv("channels.chat.url", "CHANNELS_CHAT_URL")
	viper.BindEnv("channels.email.topic", "CHANNELS_EMAIL_TOPIC")

	viper.BindEnv("broker.enabled", "BROKER_ENABLED")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.input_topic", "BROKER_KAFKA_INPUT_TOPIC")
	viper.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	return nil
}
