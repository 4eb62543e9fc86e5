package domain

// Message 通道发送请求的统一入参，SMS、Email、IM、Push 各协议共用。
// 构造之后不允许修改。
type Message struct {
	// Recipient 接收方地址。SMS 填手机号，Email 填收件人邮箱，
	// Push 填设备 token；IM 由配置的 webhook 决定接收方，可以不填。
	Recipient string
	// Subject 标题/主题。Email 为邮件主题，Push 为通知标题，
	// IM 若有则与正文拼成「【subject】\n content」，SMS 不使用。
	Subject string
	// Content 正文内容，各协议均使用。
	Content string
	// Attributes 扩展属性，透传业务元数据。仅 HTTP 邮件协议会把它合并进请求体。
	Attributes map[string]any
}

// SendResult 一次发送的结果。成功时填 MessageID，失败时填 ErrorCode 和 ErrorMessage，
// 两者不会同时出现。
type SendResult struct {
	Success      bool   `json:"success"`
	MessageID    string `json:"messageId,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SuccessResult 构造成功结果
func SuccessResult(messageID string) SendResult {
	return SendResult{Success: true, MessageID: messageID}
}

// FailureResult 构造失败结果
func FailureResult(errorCode, errorMessage string) SendResult {
	return SendResult{Success: false, ErrorCode: errorCode, ErrorMessage: errorMessage}
}
