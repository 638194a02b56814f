package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

const (
	LoanTopic         = "loan-events"
	LoanConsumerGroup = "catalog-loan-group"
)

// LoanEvent is published for every borrow, renewal and return of a book copy.
type LoanEvent struct {
	EventType   EventType `json:"eventType"`
	InstanceUid string    `json:"instanceUid"`
	BookUid     string    `json:"bookUid"`
	Username    string    `json:"username"`
	DueBack     string    `json:"dueBack,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type EventType string

const (
	EventBorrowed EventType = "BORROWED"
	EventRenewed  EventType = "RENEWED"
	EventReturned EventType = "RETURNED"
)

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer group loop until ctx is cancelled. Session
// errors are logged and the consumer rejoins the group after a short pause.
func Consume(ctx context.Context, consumer sarama.ConsumerGroup, h sarama.ConsumerGroupHandler, topic string, log *zap.Logger) error {
	for {
		if err := consumer.Consume(ctx, []string{topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("consumer.Consume", zap.String("topic", topic), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
