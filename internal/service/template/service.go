package template

import (
	"context"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/repository"
)

// Service 模板查询服务
type Service interface {
	// FindByCode 按业务编码查模板
	FindByCode(ctx context.Context, code string) (domain.Template, error)
	// FindContent 查模板在指定语言下的内容
	FindContent(ctx context.Context, templateID int64, language domain.Language) (string, error)
}

type service struct {
	repo repository.TemplateRepository
}

// NewService 创建模板服务实例
func NewService(repo repository.TemplateRepository) Service {
	return &service{repo: repo}
}

func (s *service) FindByCode(ctx context.Context, code string) (domain.Template, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *service) FindContent(ctx context.Context, templateID int64, language domain.Language) (string, error) {
	return s.repo.FindContent(ctx, templateID, language)
}
