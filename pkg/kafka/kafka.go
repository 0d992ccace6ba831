package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const (
	LendingTopic = "library.lending"
)

type Config struct {
	Addrs  []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Enable bool     `yaml:"enable" envconfig:"KAFKA_ENABLE" default:"false"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
