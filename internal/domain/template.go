package domain

import (
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/errs"
)

// Language 模板支持的语言
type Language string

const (
	LanguageZhCN Language = "zh-CN"
	LanguageEnUS Language = "en-US"
	LanguageJaJP Language = "ja-JP"
)

// ParseLanguage 解析语言码，未知语言返回错误
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case LanguageZhCN, LanguageEnUS, LanguageJaJP:
		return Language(code), nil
	default:
		return "", fmt.Errorf("%w: 语言码 = %q", errs.ErrInvalidParameter, code)
	}
}

// Template 模板元信息，内容按语言存放在 LanguageTemplate 中
type Template struct {
	ID   int64
	Code string
	Name string
}

// LanguageTemplate 某个模板在一种语言下的内容，占位符形如 {name}
type LanguageTemplate struct {
	ID         int64
	TemplateID int64
	Language   Language
	Content    string
}

// UserRole 用户角色，测试发送只对 ADMIN 和 USER 开放
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleUser   UserRole = "USER"
	UserRoleViewer UserRole = "VIEWER"
)

// UserPrincipal 已认证用户的身份信息
type UserPrincipal struct {
	UserID int64
	Role   UserRole
}
