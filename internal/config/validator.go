package config

import (
	"fmt"

	"beacon/internal/constants"
)

// ValidateStatic rejects configurations the service cannot start with.
func ValidateStatic(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Dispatch.DedupWindow <= 0 {
		return fmt.Errorf("dispatch.dedup_window must be positive, got %v", cfg.Dispatch.DedupWindow)
	}
	if cfg.Dispatch.TenantQuota <= 0 {
		return fmt.Errorf("dispatch.tenant_quota must be positive, got %d", cfg.Dispatch.TenantQuota)
	}
	if cfg.Dispatch.QuotaWindow <= 0 {
		return fmt.Errorf("dispatch.quota_window must be positive, got %v", cfg.Dispatch.QuotaWindow)
	}
	if cfg.Dispatch.MaxAttempts <= 0 {
		return fmt.Errorf("dispatch.max_attempts must be positive, got %d", cfg.Dispatch.MaxAttempts)
	}

	switch cfg.Dispatch.Store {
	case constants.StoreMemory:
	case constants.StoreRedis:
		if cfg.Redis.Host == "" {
			return fmt.Errorf("redis.host is required when dispatch.store is %q", constants.StoreRedis)
		}
	default:
		return fmt.Errorf("dispatch.store must be %q or %q, got %q", constants.StoreMemory, constants.StoreRedis, cfg.Dispatch.Store)
	}

	switch cfg.Dispatch.RuleFallback {
	case constants.FallbackAllow, constants.FallbackDeny:
	default:
		return fmt.Errorf("dispatch.rule_fallback must be %q or %q, got %q", constants.FallbackAllow, constants.FallbackDeny, cfg.Dispatch.RuleFallback)
	}

	for i, rule := range cfg.Dispatch.SuppressionRules {
		if rule.Expression == "" {
			return fmt.Errorf("dispatch.suppression_rules[%d]: expression is required", i)
		}
	}

	if cfg.Channels.Paging.URL == "" {
		return fmt.Errorf("channels.paging.url is required")
	}
	if cfg.Channels.Chat.URL == "" {
		return fmt.Errorf("channels.chat.url is required")
	}
	if cfg.Channels.Email.Topic == "" {
		return fmt.Errorf("channels.email.topic is required")
	}

	if cfg.Broker.Enabled {
		if len(cfg.Broker.Kafka.Brokers) == 0 {
			return fmt.Errorf("broker.kafka.brokers is required when the broker is enabled")
		}
		if cfg.Broker.Kafka.InputTopic == "" {
			return fmt.Errorf("broker.kafka.input_topic is required when the broker is enabled")
		}
	}

	// Email delivery always goes through the queue producer, so brokers
	// must be configured even for HTTP-only deployments.
	if len(cfg.Broker.Kafka.Brokers) == 0 {
		return fmt.Errorf("broker.kafka.brokers is required for the email channel")
	}

	return nil
}
