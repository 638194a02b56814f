package kafka

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"locallibrary/pkg/circuitbreaker"
)

// Publisher sends messages to kafka behind a circuit breaker so a dead
// broker cannot stall request handling for long.
type Publisher interface {
	Publish(topic string, v any) error
}

type publisher struct {
	producer sarama.SyncProducer
	cb       circuitbreaker.CircuitBreaker
}

func NewPublisher(producer sarama.SyncProducer) Publisher {
	const (
		recordLength     = 20
		timeout          = 30 * time.Second
		percentile       = 0.5
		recoveryRequests = 3
	)
	return &publisher{
		producer: producer,
		cb:       circuitbreaker.New(recordLength, timeout, percentile, recoveryRequests),
	}
}

func (p *publisher) Publish(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.cb.Call(func() error {
		msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}
