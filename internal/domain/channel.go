package domain

import (
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/errs"
)

// ChannelType 渠道大类
type ChannelType string

const (
	ChannelTypeEmail ChannelType = "EMAIL"
	ChannelTypeSMS   ChannelType = "SMS"
	ChannelTypeIM    ChannelType = "IM"
	ChannelTypePush  ChannelType = "PUSH"
)

// ParseChannelType 解析渠道大类，未知类型返回错误
func ParseChannelType(s string) (ChannelType, error) {
	switch ChannelType(s) {
	case ChannelTypeEmail, ChannelTypeSMS, ChannelTypeIM, ChannelTypePush:
		return ChannelType(s), nil
	default:
		return "", fmt.Errorf("%w: 渠道类型 = %q", errs.ErrInvalidParameter, s)
	}
}

// Channel 渠道实体，代表一个可投递端点（比如一个 SMTP 账号）。
// Properties 是协议无关的属性包，由配置归一化组件解析成强类型配置。
type Channel struct {
	ID         int64
	Name       string
	Type       ChannelType
	Properties map[string]any
	Enabled    bool
}
