package domain

import (
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/errs"
)

// SendTask 一次逻辑发送请求：一个模板按语言渲染后，经一个渠道投递给一批接收者。
// 提交时构造，之后不再修改，序列化后进入任务队列，由调度流水线消费。
type SendTask struct {
	TaskID       string            `json:"taskId"`
	TemplateCode string            `json:"templateCode"`
	LanguageCode string            `json:"languageCode"`
	Params       map[string]string `json:"params"`
	ChannelID    int64             `json:"channelId"`
	Recipients   []string          `json:"recipients"`
	SubmittedAt  int64             `json:"submittedAt"`
}

func (t *SendTask) Validate() error {
	if t.TaskID == "" {
		return fmt.Errorf("%w: TaskID 为空", errs.ErrInvalidParameter)
	}
	if t.TemplateCode == "" {
		return fmt.Errorf("%w: TemplateCode 为空", errs.ErrInvalidParameter)
	}
	if t.LanguageCode == "" {
		return fmt.Errorf("%w: LanguageCode 为空", errs.ErrInvalidParameter)
	}
	if t.ChannelID <= 0 {
		return fmt.Errorf("%w: ChannelID = %d", errs.ErrInvalidParameter, t.ChannelID)
	}
	if len(t.Recipients) == 0 {
		return fmt.Errorf("%w: Recipients 为空", errs.ErrInvalidParameter)
	}
	return nil
}
