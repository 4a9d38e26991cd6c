package config

import "time"

// LockConfig controls the seat lock manager's hold duration.
type LockConfig struct {
	SeatLockTimeout time.Duration
}

func LoadLockConfig() LockConfig {
	return LockConfig{
		SeatLockTimeout: envDur("SEAT_LOCK_TIMEOUT", 120*time.Second),
	}
}
