// internal/actions/executors/waitlist-join/config.go
package waitlistjoin

import "time"

type Config struct {
	Timeout     time.Duration
	SNSTopicARN string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
