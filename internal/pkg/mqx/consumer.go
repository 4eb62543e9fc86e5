package mqx

import (
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Consumer 抽象 kafka 消费者，方便在测试里替换实现
type Consumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Close() error
}
