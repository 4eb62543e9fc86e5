package ioc

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/econf"
)

type kafkaConfig struct {
	Addr    string `yaml:"addr"`
	GroupID string `yaml:"groupId"`
}

func loadKafkaConfig() kafkaConfig {
	var cfg kafkaConfig
	err := econf.UnmarshalKey("kafka", &cfg)
	if err != nil {
		panic(err)
	}
	return cfg
}

func InitKafkaProducer() *kafka.Producer {
	cfg := loadKafkaConfig()
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Addr,
		"client.id":         "notification-gateway",
	})
	if err != nil {
		panic(fmt.Sprintf("创建生产者失败: %v", err))
	}
	return producer
}

func InitKafkaConsumer() *kafka.Consumer {
	cfg := loadKafkaConfig()
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Addr,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
	})
	if err != nil {
		panic(fmt.Sprintf("创建消费者失败: %v", err))
	}
	return consumer
}
