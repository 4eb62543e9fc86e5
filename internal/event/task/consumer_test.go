package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKafkaConsumer struct {
	mu        sync.Mutex
	messages  []*kafka.Message
	committed []*kafka.Message
}

func (f *fakeKafkaConsumer) ReadMessage(_ time.Duration) (*kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeKafkaConsumer) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, m)
	return nil, nil
}

func (f *fakeKafkaConsumer) Close() error { return nil }

func (f *fakeKafkaConsumer) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type fakeDispatch struct {
	mu    sync.Mutex
	tasks []domain.SendTask
	err   error
	done  chan struct{}
}

func (f *fakeDispatch) ProcessTask(_ context.Context, task domain.SendTask) error {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return f.err
}

func taskMessage(t *testing.T, task domain.SendTask) *kafka.Message {
	t.Helper()
	data, err := json.Marshal(task)
	require.NoError(t, err)
	topic := EventName
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic},
		Key:            []byte(task.TaskID),
		Value:          data,
	}
}

func TestConsume_ProcessesAndCommits(t *testing.T) {
	t.Parallel()
	task := domain.SendTask{
		TaskID:       "task-1",
		TemplateCode: "ORDER_SHIPPED",
		LanguageCode: "zh-CN",
		ChannelID:    1,
		Recipients:   []string{"a@example.com"},
	}
	fc := &fakeKafkaConsumer{messages: []*kafka.Message{taskMessage(t, task)}}
	fd := &fakeDispatch{done: make(chan struct{})}
	c := newConsumer(fd, fc, 4)

	require.NoError(t, c.Consume(context.Background()))

	select {
	case <-fd.done:
	case <-time.After(time.Second):
		t.Fatal("调度流水线没有被调用")
	}
	require.Len(t, fd.tasks, 1)
	assert.Equal(t, "task-1", fd.tasks[0].TaskID)
	assert.Equal(t, []string{"a@example.com"}, fd.tasks[0].Recipients)

	// 处理成功后位点被提交
	assert.Eventually(t, func() bool {
		return fc.committedCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestConsume_SkipsAndCommitsPoisonMessage(t *testing.T) {
	t.Parallel()
	topic := EventName
	fc := &fakeKafkaConsumer{messages: []*kafka.Message{{
		TopicPartition: kafka.TopicPartition{Topic: &topic},
		Value:          []byte("不是JSON"),
	}}}
	fd := &fakeDispatch{}
	c := newConsumer(fd, fc, 4)

	require.NoError(t, c.Consume(context.Background()))

	// 毒消息不进流水线，但位点被提交避免卡住分区
	assert.Empty(t, fd.tasks)
	assert.Equal(t, 1, fc.committedCount())
}

func TestConsume_TimeoutIsNotAnError(t *testing.T) {
	t.Parallel()
	c := newConsumer(&fakeDispatch{}, &fakeKafkaConsumer{}, 4)
	assert.NoError(t, c.Consume(context.Background()))
}

func TestConsume_NoCommitOnInfrastructureError(t *testing.T) {
	t.Parallel()
	task := domain.SendTask{TaskID: "task-2", TemplateCode: "X", LanguageCode: "zh-CN", ChannelID: 1, Recipients: []string{"a"}}
	fc := &fakeKafkaConsumer{messages: []*kafka.Message{taskMessage(t, task)}}
	fd := &fakeDispatch{err: assert.AnError, done: make(chan struct{})}
	c := newConsumer(fd, fc, 4)

	require.NoError(t, c.Consume(context.Background()))
	<-fd.done

	// 处理失败不提交位点，等待重新投递
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fc.committedCount())
}
