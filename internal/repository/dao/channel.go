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

// Channel 渠道表，协议凭证以 JSON 存储，敏感字段落库前已加密
type Channel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;comment:'渠道ID'"`
	Name       string `gorm:"type:VARCHAR(128);NOT NULL;comment:'渠道名称'"`
	Type       string `gorm:"type:ENUM('EMAIL','SMS','IM','PUSH');NOT NULL;comment:'渠道大类'"`
	Properties string `gorm:"type:TEXT;NOT NULL;comment:'协议属性包JSON，含协议标识和凭证'"`
	Enabled    bool   `gorm:"type:TINYINT(1);NOT NULL;DEFAULT:1;comment:'是否启用'"`
	Ctime      int64
	Utime      int64
}

// TableName 重命名表
func (Channel) TableName() string {
	return "channels"
}

// ChannelDAO 提供渠道数据访问对象接口
type ChannelDAO interface {
	// GetByID 根据ID获取渠道
	GetByID(ctx context.Context, id int64) (Channel, error)
	// Create 创建渠道
	Create(ctx context.Context, channel Channel) (Channel, error)
	// Update 更新渠道
	Update(ctx context.Context, channel Channel) error
	// List 列出所有渠道
	List(ctx context.Context) ([]Channel, error)
}

type channelDAO struct {
	db *egorm.Component
}

// NewChannelDAO 创建渠道DAO实例
func NewChannelDAO(db *egorm.Component) ChannelDAO {
	return &channelDAO{db: db}
}

func (d *channelDAO) GetByID(ctx context.Context, id int64) (Channel, error) {
	var c Channel
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Channel{}, fmt.Errorf("%w: id = %d", errs.ErrChannelNotFound, id)
	}
	return c, err
}

func (d *channelDAO) Create(ctx context.Context, channel Channel) (Channel, error) {
	now := time.Now().UnixMilli()
	channel.Ctime, channel.Utime = now, now
	err := d.db.WithContext(ctx).Create(&channel).Error
	return channel, err
}

func (d *channelDAO) Update(ctx context.Context, channel Channel) error {
	channel.Utime = time.Now().UnixMilli()
	return d.db.WithContext(ctx).
		Model(&Channel{}).
		Where("id = ?", channel.ID).
		Updates(map[string]any{
			"name":       channel.Name,
			"type":       channel.Type,
			"properties": channel.Properties,
			"enabled":    channel.Enabled,
			"utime":      channel.Utime,
		}).Error
}

func (d *channelDAO) List(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	err := d.db.WithContext(ctx).Order("id ASC").Find(&channels).Error
	return channels, err
}
