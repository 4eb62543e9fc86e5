package task

import (
	"context"
	"encoding/json"
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type Producer interface {
	// Produce 发布一条发送任务，等待 broker 确认后返回
	Produce(ctx context.Context, task domain.SendTask) error
}

type kafkaProducer struct {
	producer *kafka.Producer
	topic    string
}

// NewProducer 创建发送任务事件生产者
func NewProducer(producer *kafka.Producer) Producer {
	return &kafkaProducer{producer: producer, topic: EventName}
}

func (p *kafkaProducer) Produce(ctx context.Context, task domain.SendTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("序列化任务失败: %w", err)
	}

	deliveryCh := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		// 同一个任务的重试落到同一个分区
		Key:   []byte(task.TaskID),
		Value: data,
	}, deliveryCh)
	if err != nil {
		return fmt.Errorf("发布任务失败: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case evt := <-deliveryCh:
		msg, ok := evt.(*kafka.Message)
		if !ok {
			return fmt.Errorf("发布任务失败: 未知事件类型 %T", evt)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("发布任务失败: %w", msg.TopicPartition.Error)
		}
		return nil
	}
}
