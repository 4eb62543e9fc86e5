package channel

import (
	"time"
)

// Protocol 具体线协议，一个渠道大类下可以有多个协议
type Protocol string

const (
	ProtocolSMTP       Protocol = "SMTP"
	ProtocolHTTP       Protocol = "HTTP"
	ProtocolDingTalk   Protocol = "DINGTALK"
	ProtocolWeChatWork Protocol = "WECHAT_WORK"
	ProtocolAliyun     Protocol = "ALIYUN"
	ProtocolTencent    Protocol = "TENCENT"
	ProtocolAPNs       Protocol = "APNS"
	ProtocolFCM        Protocol = "FCM"
)

// Config 归一化之后的强类型渠道配置。一个实例只对应一种协议变体，
// 必填字段非空、重试次数边界在构造（Normalize）时校验完成，发送时不再检查。
type Config interface {
	Protocol() Protocol
}

const (
	defaultTimeout    = 10 * time.Second
	defaultRetryDelay = time.Second
)

// SMTPEmailConfig SMTP 协议邮件配置
type SMTPEmailConfig struct {
	Host              string        `mapstructure:"host" validate:"required"`
	Port              int           `mapstructure:"port" validate:"required,gt=0,lte=65535"`
	Username          string        `mapstructure:"username" validate:"required"`
	Password          string        `mapstructure:"password" validate:"required"`
	SSLEnabled        bool          `mapstructure:"sslEnabled"`
	From              string        `mapstructure:"from"`
	ConnectionTimeout time.Duration `mapstructure:"connectionTimeout"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	MaxRetries        int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay        time.Duration `mapstructure:"retryDelay"`
}

func (c *SMTPEmailConfig) Protocol() Protocol { return ProtocolSMTP }

func (c *SMTPEmailConfig) applyDefaults() {
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = defaultTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// HTTPEmailConfig HTTP 邮件 API 配置
type HTTPEmailConfig struct {
	BaseURL      string        `mapstructure:"baseUrl" validate:"required,url"`
	Path         string        `mapstructure:"path" validate:"required"`
	APIKeyHeader string        `mapstructure:"apiKeyHeader" validate:"required"`
	APIKey       string        `mapstructure:"apiKey" validate:"required"`
	From         string        `mapstructure:"from"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay   time.Duration `mapstructure:"retryDelay"`
}

func (c *HTTPEmailConfig) Protocol() Protocol { return ProtocolHTTP }

func (c *HTTPEmailConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// DingTalkConfig 钉钉群机器人配置，webhookUrl 已包含 access_token
type DingTalkConfig struct {
	WebhookURL string        `mapstructure:"webhookUrl" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay time.Duration `mapstructure:"retryDelay"`
}

func (c *DingTalkConfig) Protocol() Protocol { return ProtocolDingTalk }

func (c *DingTalkConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// WeChatWorkConfig 企业微信群机器人配置
type WeChatWorkConfig struct {
	WebhookURL string        `mapstructure:"webhookUrl" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay time.Duration `mapstructure:"retryDelay"`
}

func (c *WeChatWorkConfig) Protocol() Protocol { return ProtocolWeChatWork }

func (c *WeChatWorkConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// AliyunSMSConfig 阿里云短信配置。整条渲染后的内容作为单变量模板的唯一参数，
// 参数名默认 content，可用 templateParamKey 覆盖。
type AliyunSMSConfig struct {
	AccessKeyID      string        `mapstructure:"accessKeyId" validate:"required"`
	AccessKeySecret  string        `mapstructure:"accessKeySecret" validate:"required"`
	RegionID         string        `mapstructure:"regionId"`
	SignName         string        `mapstructure:"signName" validate:"required"`
	TemplateCode     string        `mapstructure:"templateCode" validate:"required"`
	TemplateParamKey string        `mapstructure:"templateParamKey"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRetries       int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay       time.Duration `mapstructure:"retryDelay"`
}

func (c *AliyunSMSConfig) Protocol() Protocol { return ProtocolAliyun }

func (c *AliyunSMSConfig) applyDefaults() {
	if c.TemplateParamKey == "" {
		c.TemplateParamKey = "content"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// TencentSMSConfig 腾讯云短信配置，同样是单变量模板
type TencentSMSConfig struct {
	SecretID   string        `mapstructure:"secretId" validate:"required"`
	SecretKey  string        `mapstructure:"secretKey" validate:"required"`
	Region     string        `mapstructure:"region" validate:"required"`
	SDKAppID   string        `mapstructure:"sdkAppId" validate:"required"`
	SignName   string        `mapstructure:"signName" validate:"required"`
	TemplateID string        `mapstructure:"templateId" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay time.Duration `mapstructure:"retryDelay"`
}

func (c *TencentSMSConfig) Protocol() Protocol { return ProtocolTencent }

func (c *TencentSMSConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// APNsConfig 苹果 APNs 推送配置。私钥二选一：p8KeyContent 内联 PEM，
// 或 p8KeyPath 指向文件，两者都没有时 Normalize 报错。
type APNsConfig struct {
	KeyID        string        `mapstructure:"keyId" validate:"required"`
	TeamID       string        `mapstructure:"teamId" validate:"required"`
	BundleID     string        `mapstructure:"bundleId" validate:"required"`
	P8KeyContent string        `mapstructure:"p8KeyContent"`
	P8KeyPath    string        `mapstructure:"p8KeyPath"`
	Production   bool          `mapstructure:"production"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay   time.Duration `mapstructure:"retryDelay"`
}

func (c *APNsConfig) Protocol() Protocol { return ProtocolAPNs }

func (c *APNsConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// FCMConfig 谷歌 FCM HTTP v1 推送配置。projectId 缺省时
// 从 serviceAccountJson 里解析 project_id。
type FCMConfig struct {
	ServiceAccountJSON string        `mapstructure:"serviceAccountJson" validate:"required"`
	ProjectID          string        `mapstructure:"projectId"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxRetries         int           `mapstructure:"maxRetries" validate:"gte=0"`
	RetryDelay         time.Duration `mapstructure:"retryDelay"`
}

func (c *FCMConfig) Protocol() Protocol { return ProtocolFCM }

func (c *FCMConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}
