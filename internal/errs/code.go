package errs

// 发送结果中使用的错误码。调用方按码分支，不解析 message 文本。
// 通用码跨协议稳定，协议兜底码（如 MAIL_SEND_FAILED）只在响应无法归类时使用。
const (
	// 调用方错误，绝不重试
	CodeInvalidRequest = "INVALID_REQUEST"
	// 凭证错误（401/403），绝不重试
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	// 瞬时错误，按配置重试
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeServerError       = "SERVER_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeConnectionFailed  = "CONNECTION_FAILED"

	// 流水线查找失败，任务级终态
	CodeTemplateNotFound         = "TEMPLATE_NOT_FOUND"
	CodeLanguageTemplateNotFound = "LANGUAGE_TEMPLATE_NOT_FOUND"
	CodeInvalidLanguage          = "INVALID_LANGUAGE"
	CodeChannelNotFound          = "CHANNEL_NOT_FOUND"
	CodeRecipientsEmpty          = "RECIPIENTS_EMPTY"
	CodeInvalidConfig            = "INVALID_CONFIG"
	CodeChannelCreateFailed      = "CHANNEL_CREATE_FAILED"

	// 单个接收者的终态，不影响其余接收者
	CodeSendException   = "SEND_EXCEPTION"
	CodeSendInterrupted = "SEND_INTERRUPTED"

	// 协议兜底码
	CodeMailSendFailed       = "MAIL_SEND_FAILED"
	CodeDingTalkAPIError     = "DINGTALK_API_ERROR"
	CodeDingTalkSendFailed   = "DINGTALK_SEND_FAILED"
	CodeWeChatWorkAPIError   = "WECHAT_WORK_API_ERROR"
	CodeWeChatWorkSendFailed = "WECHAT_WORK_SEND_FAILED"
	CodeAliyunSMSError       = "ALIYUN_SMS_ERROR"
	CodeTencentSMSError      = "TENCENT_SMS_ERROR"
	CodeAPNsSendFailed       = "APNS_SEND_FAILED"
	CodeFCMSendFailed        = "FCM_SEND_FAILED"

	// 设备 token 专属码，Push 渠道区别于通用分类
	CodeInvalidDeviceToken  = "INVALID_DEVICE_TOKEN"
	CodeDeviceTokenInactive = "DEVICE_TOKEN_INACTIVE"

	// 测试发送
	CodeTestSendFailed = "TEST_SEND_FAILED"
)
