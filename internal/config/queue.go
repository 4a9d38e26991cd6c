package config

import "time"

// QueueConfig controls the fair admission queue's batch advance cadence
// and the lifetime of minted entry tokens.
type QueueConfig struct {
	BatchSize     int
	BatchInterval time.Duration
	TokenTTL      time.Duration
	RecentWindow  time.Duration
}

func LoadQueueConfig() QueueConfig {
	return QueueConfig{
		BatchSize:     envInt("QUEUE_BATCH_SIZE", 50),
		BatchInterval: envDur("QUEUE_BATCH_INTERVAL", 10*time.Second),
		TokenTTL:      envDur("QUEUE_TOKEN_TTL", 600*time.Second),
		RecentWindow:  envDur("QUEUE_RECENT_WINDOW", 30*time.Second),
	}
}
