package channel

import (
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
)

// NewChannel 按配置类型构造对应协议的发送器
func NewChannel(cfg Config) (Channel, error) {
	switch c := cfg.(type) {
	case *SMTPEmailConfig:
		return newSMTPEmailChannel(c), nil
	case *HTTPEmailConfig:
		return newHTTPEmailChannel(c), nil
	case *DingTalkConfig:
		return newDingTalkChannel(c), nil
	case *WeChatWorkConfig:
		return newWeChatWorkChannel(c), nil
	case *AliyunSMSConfig:
		return newAliyunSMSChannel(c)
	case *TencentSMSConfig:
		return newTencentSMSChannel(c)
	case *APNsConfig:
		return newAPNsChannel(c), nil
	case *FCMConfig:
		return newFCMChannel(c)
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrUnsupportedConfig, cfg)
	}
}

// Build 从渠道原始属性一步构造发送器：归一化加工厂
func Build(typ domain.ChannelType, props map[string]any) (Channel, error) {
	cfg, err := Normalize(typ, props)
	if err != nil {
		return nil, err
	}
	return NewChannel(cfg)
}
