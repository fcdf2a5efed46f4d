package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required,notEmpty" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"catalogue"`
	Topic     string   `env:"KAFKA_TOPIC" envDefault:"shop"`
	// RetryBackoff is how long a partition waits before redelivering a record whose handler failed.
	RetryBackoff time.Duration `env:"KAFKA_RETRY_BACKOFF" envDefault:"1s"`
}
