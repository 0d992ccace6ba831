package queue

import (
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Enqueuer interface {
	// Enqueue publishes v as JSON. Messages with the same key keep their order.
	Enqueue(topic, key string, v any) error
}

func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	return &enqueuerImpl{
		producer: producer,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Enqueue(topic, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(data)}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

// Noop drops every message. Used when kafka is disabled.
type Noop struct{}

func (Noop) Enqueue(string, string, any) error { return nil }
