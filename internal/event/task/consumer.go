package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/pkg/mqx"
	"gitee.com/flycash/notification-gateway/internal/service/dispatch"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/semaphore"
)

const defaultReadTimeout = time.Second

// Consumer 消费发送任务并交给调度流水线处理。
// 任务之间用信号量控制并发，单个任务内部仍然串行发送。
// 消费语义是至少一次：处理完成后才提交位点，重复投递靠审计记录容忍。
type Consumer struct {
	svc      dispatch.Service
	consumer mqx.Consumer
	sem      *semaphore.Weighted
	logger   *elog.Component
}

// NewConsumer 创建任务消费者并订阅任务主题，concurrency 是同时处理的任务上限
func NewConsumer(svc dispatch.Service, consumer *kafka.Consumer, concurrency int64) (*Consumer, error) {
	if err := consumer.SubscribeTopics([]string{EventName}, nil); err != nil {
		return nil, fmt.Errorf("订阅任务主题失败: %w", err)
	}
	return newConsumer(svc, consumer, concurrency), nil
}

func newConsumer(svc dispatch.Service, consumer mqx.Consumer, concurrency int64) *Consumer {
	return &Consumer{
		svc:      svc,
		consumer: consumer,
		sem:      semaphore.NewWeighted(concurrency),
		logger:   elog.DefaultLogger,
	}
}

// Start 启动消费循环，ctx 取消后退出
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := c.Consume(ctx); err != nil {
				c.logger.Error("消费发送任务失败", elog.FieldErr(err))
			}
		}
	}()
}

// Consume 拉取并处理一条任务消息
func (c *Consumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.ReadMessage(defaultReadTimeout)
	if err != nil {
		var kErr kafka.Error
		if errors.As(err, &kErr) && kErr.Code() == kafka.ErrTimedOut {
			return nil
		}
		return fmt.Errorf("获取消息失败: %w", err)
	}

	var task domain.SendTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		c.logger.Warn("解析任务消息失败，跳过",
			elog.FieldErr(err),
			elog.Any("msg", msg))
		// 毒消息直接提交，避免卡住分区
		if _, cmErr := c.consumer.CommitMessage(msg); cmErr != nil {
			return fmt.Errorf("提交消息失败: %w", cmErr)
		}
		return nil
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("获取并发额度失败: %w", err)
	}
	go func() {
		defer c.sem.Release(1)
		if err := c.svc.ProcessTask(ctx, task); err != nil {
			c.logger.Error("处理发送任务失败",
				elog.FieldErr(err),
				elog.String("taskId", task.TaskID))
			return
		}
		// 处理完成才提交。乱序提交可能导致个别任务重复投递，
		// 消费端在审计记录层面是幂等可追溯的，重复发送可以接受。
		if _, err := c.consumer.CommitMessage(msg); err != nil {
			c.logger.Warn("提交消息失败",
				elog.FieldErr(err),
				elog.String("taskId", task.TaskID))
		}
	}()
	return nil
}
