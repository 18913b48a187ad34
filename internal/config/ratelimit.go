package config

import "time"

// RateLimitConfig controls the per-source-address limiter applied to the
// forgot-password endpoint. Capacity requests are allowed per Window for a
// given client IP; further requests receive 429 until the window rolls over.
type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	Window   time.Duration
	Prefix   string
}

// LoadRateLimitConfig reads limiter settings from the environment, applying
// conservative defaults suited to an abuse-prone endpoint.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:  envStr("RATE_LIMIT_ENABLED", "true") == "true",
		Capacity: envInt("RATE_LIMIT_CAPACITY", 5),
		Window:   envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		Prefix:   envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

func envDur(key string, def time.Duration) time.Duration {
	v := envStr(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
