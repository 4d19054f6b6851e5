package resilience

import "time"

// CircuitBreakerConfig tunes a breaker. Zero or negative thresholds fall back
// to the defaults when the breaker is built.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

var defaultCircuitBreakerConfig = CircuitBreakerConfig{
	Enabled:          true,
	FailureThreshold: 5,
	OpenTimeout:      15 * time.Second,
	HalfOpenMaxReq:   2,
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return defaultCircuitBreakerConfig
}

// Normalized keeps Enabled and replaces out-of-range values with defaults.
func (c CircuitBreakerConfig) Normalized() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultCircuitBreakerConfig.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultCircuitBreakerConfig.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultCircuitBreakerConfig.HalfOpenMaxReq
	}
	return c
}
