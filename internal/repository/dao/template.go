package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

// Template 通知模板表
type Template struct {
	ID    int64  `gorm:"primaryKey;autoIncrement;comment:'模板ID'"`
	Code  string `gorm:"type:VARCHAR(64);NOT NULL;uniqueIndex:uk_code;comment:'模板业务编码，任务按编码引用'"`
	Name  string `gorm:"type:VARCHAR(128);NOT NULL;comment:'模板名称'"`
	Ctime int64
	Utime int64
}

// TableName 重命名表
func (Template) TableName() string {
	return "templates"
}

// LanguageTemplate 语言模板表，每个模板按语言各存一份内容
type LanguageTemplate struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;comment:'语言模板ID'"`
	TemplateID int64  `gorm:"type:BIGINT;NOT NULL;uniqueIndex:uk_template_language,priority:1;comment:'关联模板ID'"`
	Language   string `gorm:"type:VARCHAR(16);NOT NULL;uniqueIndex:uk_template_language,priority:2;comment:'语言代码，如zh-CN'"`
	Content    string `gorm:"type:TEXT;NOT NULL;comment:'模板内容，占位符格式{name}'"`
	Ctime      int64
	Utime      int64
}

// TableName 重命名表
func (LanguageTemplate) TableName() string {
	return "language_templates"
}

// TemplateDAO 提供模板数据访问对象接口
type TemplateDAO interface {
	// GetByCode 根据业务编码获取模板
	GetByCode(ctx context.Context, code string) (Template, error)
	// GetLanguageTemplate 获取模板在指定语言下的内容
	GetLanguageTemplate(ctx context.Context, templateID int64, language string) (LanguageTemplate, error)
	// Create 创建模板
	Create(ctx context.Context, template Template) (Template, error)
	// CreateLanguageTemplate 创建语言模板
	CreateLanguageTemplate(ctx context.Context, lt LanguageTemplate) (LanguageTemplate, error)
}

type templateDAO struct {
	db *egorm.Component
}

// NewTemplateDAO 创建模板DAO实例
func NewTemplateDAO(db *egorm.Component) TemplateDAO {
	return &templateDAO{db: db}
}

func (d *templateDAO) GetByCode(ctx context.Context, code string) (Template, error) {
	var t Template
	err := d.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Template{}, fmt.Errorf("%w: code = %s", errs.ErrTemplateNotFound, code)
	}
	return t, err
}

func (d *templateDAO) GetLanguageTemplate(ctx context.Context, templateID int64, language string) (LanguageTemplate, error) {
	var lt LanguageTemplate
	err := d.db.WithContext(ctx).
		Where("template_id = ? AND language = ?", templateID, language).
		First(&lt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LanguageTemplate{}, fmt.Errorf("%w: templateID = %d, language = %s",
			errs.ErrLanguageTemplateNotFound, templateID, language)
	}
	return lt, err
}

func (d *templateDAO) Create(ctx context.Context, template Template) (Template, error) {
	now := time.Now().UnixMilli()
	template.Ctime, template.Utime = now, now
	err := d.db.WithContext(ctx).Create(&template).Error
	return template, err
}

func (d *templateDAO) CreateLanguageTemplate(ctx context.Context, lt LanguageTemplate) (LanguageTemplate, error) {
	now := time.Now().UnixMilli()
	lt.Ctime, lt.Utime = now, now
	err := d.db.WithContext(ctx).Create(&lt).Error
	return lt, err
}
