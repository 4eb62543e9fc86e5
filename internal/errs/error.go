package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter  = errors.New("参数错误")
	ErrInvalidConfig     = errors.New("渠道配置不合法")
	ErrUnsupportedConfig = errors.New("不支持的渠道配置类型")

	ErrTemplateNotFound         = errors.New("模板不存在")
	ErrLanguageTemplateNotFound = errors.New("语言模板不存在")
	ErrChannelNotFound          = errors.New("渠道不存在")

	ErrUnauthorized = errors.New("未授权")
	ErrForbidden    = errors.New("没有权限执行测试发送")
	ErrRateLimited  = errors.New("测试发送过于频繁")

	ErrCreateRecordFailed = errors.New("创建审计记录失败")
	ErrIDGenerateFailed   = errors.New("ID生成失败")
)
