package repository

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/repository/dao"
	"github.com/patrickmn/go-cache"
)

const (
	templateCacheTTL     = 5 * time.Minute
	templateCacheCleanup = 10 * time.Minute
)

// TemplateRepository 模板仓储。模板读多写少，读路径带进程内缓存。
type TemplateRepository interface {
	// FindByCode 按业务编码查模板
	FindByCode(ctx context.Context, code string) (domain.Template, error)
	// FindContent 查模板在指定语言下的内容
	FindContent(ctx context.Context, templateID int64, language domain.Language) (string, error)
	// Create 创建模板
	Create(ctx context.Context, template domain.Template) (domain.Template, error)
	// CreateLanguageTemplate 创建语言模板
	CreateLanguageTemplate(ctx context.Context, lt domain.LanguageTemplate) (domain.LanguageTemplate, error)
}

type templateRepository struct {
	dao   dao.TemplateDAO
	cache *cache.Cache
}

// NewTemplateRepository 创建模板仓储实例
func NewTemplateRepository(d dao.TemplateDAO) TemplateRepository {
	return &templateRepository{
		dao:   d,
		cache: cache.New(templateCacheTTL, templateCacheCleanup),
	}
}

func (r *templateRepository) FindByCode(ctx context.Context, code string) (domain.Template, error) {
	key := "template:" + code
	if cached, ok := r.cache.Get(key); ok {
		return cached.(domain.Template), nil
	}
	entity, err := r.dao.GetByCode(ctx, code)
	if err != nil {
		return domain.Template{}, err
	}
	t := domain.Template{
		ID:   entity.ID,
		Code: entity.Code,
		Name: entity.Name,
	}
	r.cache.SetDefault(key, t)
	return t, nil
}

func (r *templateRepository) FindContent(ctx context.Context, templateID int64, language domain.Language) (string, error) {
	key := fmt.Sprintf("content:%d:%s", templateID, language)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(string), nil
	}
	entity, err := r.dao.GetLanguageTemplate(ctx, templateID, string(language))
	if err != nil {
		return "", err
	}
	r.cache.SetDefault(key, entity.Content)
	return entity.Content, nil
}

func (r *templateRepository) Create(ctx context.Context, template domain.Template) (domain.Template, error) {
	entity, err := r.dao.Create(ctx, dao.Template{
		Code: template.Code,
		Name: template.Name,
	})
	if err != nil {
		return domain.Template{}, err
	}
	template.ID = entity.ID
	return template, nil
}

func (r *templateRepository) CreateLanguageTemplate(ctx context.Context, lt domain.LanguageTemplate) (domain.LanguageTemplate, error) {
	entity, err := r.dao.CreateLanguageTemplate(ctx, dao.LanguageTemplate{
		TemplateID: lt.TemplateID,
		Language:   string(lt.Language),
		Content:    lt.Content,
	})
	if err != nil {
		return domain.LanguageTemplate{}, err
	}
	lt.ID = entity.ID
	// 内容变了，旧缓存立刻作废
	r.cache.Delete(fmt.Sprintf("content:%d:%s", lt.TemplateID, lt.Language))
	return lt, nil
}
