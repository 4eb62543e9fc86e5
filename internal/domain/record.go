package domain

// SendRecordStatus 审计记录状态
type SendRecordStatus string

const (
	SendRecordStatusSuccess SendRecordStatus = "SUCCESS"
	SendRecordStatusFailed  SendRecordStatus = "FAILED"
)

// SendRecord 一条 (taskId, recipient) 维度的审计记录，
// 在发送尝试结束后写入，之后不再更新。
// 任务级失败（模板/渠道不存在等）只写一条，Recipient 为空。
type SendRecord struct {
	ID              int64
	TaskID          string
	TemplateCode    string
	LanguageCode    string
	Recipient       string
	RenderedContent string
	ChannelID       int64
	ChannelType     ChannelType
	ChannelName     string
	Status          SendRecordStatus
	MessageID       string
	ErrorCode       string
	ErrorMessage    string
	SubmittedAt     int64
	SentAt          int64
}
