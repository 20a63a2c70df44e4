package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultChannelTimeout = 10 * time.Second
)

const (
	// RedactionSentinel replaces every secret-shaped match before a
	// payload leaves the process.
	RedactionSentinel = "[REDACTED]"
)

const (
	CacheKeyPrefixDedup = "dedup:"
	CacheKeyPrefixQuota = "quota:"
)

const (
	DefaultDedupWindow      = 5 * time.Minute
	DefaultDedupMaxEntries  = 1000
	DefaultQuotaWindow      = time.Hour
	DefaultQuotaPerTenant   = 100
	DefaultCriticalAttempts = 3
	DefaultRetryInterval    = time.Second
)

const (
	DefaultAlertTopic = "alerts"
	DefaultEmailTopic = "email_notifications"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	ChannelPaging = "paging"
	ChannelChat   = "chat"
	ChannelEmail  = "email"
)
