package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig configures the fixed-window request counter that
// protects the public read paths feeding into the queue/reservation core
// (event listings, banners). Max/Window follow the spec's documented
// defaults (10 requests / 1 second) and env var names.
type RateLimitConfig struct {
    Enabled bool
    Max     int
    Window  time.Duration
    Prefix  string
    Debug   bool
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Max:     envInt("RATE_LIMIT_MAX", 10),
        Window:  envDur("RATE_LIMIT_WINDOW", time.Second),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rate_limit"),
        Debug:   envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Max < 1 {
        cfg.Max = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = time.Second
    }
    return cfg
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
