// internal/actions/executors/subscription-cancel/config.go
package subscriptioncancel

import "time"

type Config struct {
	Timeout   time.Duration
	SESSender string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
