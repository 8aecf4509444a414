package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Addrs    []string `envconfig:"KAFKA_ADDRS"`
	Topic    string   `envconfig:"KAFKA_TOPIC" default:"library-events"`
	ClientID string   `envconfig:"KAFKA_CLIENT_ID" default:"library-service"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.ClientID = cfg.ClientID
	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
