package dao

import (
	"context"
	"time"

	"github.com/ego-component/egorm"
)

// SendRecord 发送审计记录表。ID 由雪花生成器分配，不用数据库自增。
type SendRecord struct {
	ID              int64  `gorm:"primaryKey;comment:'记录ID，雪花生成'"`
	TaskID          string `gorm:"type:VARCHAR(64);NOT NULL;index:idx_task_id;comment:'发送任务ID'"`
	TemplateCode    string `gorm:"type:VARCHAR(64);NOT NULL;comment:'模板业务编码'"`
	LanguageCode    string `gorm:"type:VARCHAR(16);NOT NULL;comment:'语言代码'"`
	Recipient       string `gorm:"type:VARCHAR(256);NOT NULL;comment:'接收者，任务级失败时为空'"`
	RenderedContent string `gorm:"type:TEXT;comment:'渲染后的内容'"`
	ChannelID       int64  `gorm:"type:BIGINT;NOT NULL;DEFAULT:0;comment:'渠道ID'"`
	ChannelType     string `gorm:"type:VARCHAR(16);comment:'渠道大类'"`
	ChannelName     string `gorm:"type:VARCHAR(128);comment:'渠道名称'"`
	Status          string `gorm:"type:ENUM('SUCCESS','FAILED');NOT NULL;index:idx_status;comment:'发送结果'"`
	MessageID       string `gorm:"type:VARCHAR(256);comment:'协议侧消息ID'"`
	ErrorCode       string `gorm:"type:VARCHAR(64);comment:'错误码'"`
	ErrorMessage    string `gorm:"type:VARCHAR(1024);comment:'错误详情'"`
	SubmittedAt     int64  `gorm:"comment:'任务提交时间戳（毫秒）'"`
	SentAt          int64  `gorm:"comment:'发送完成时间戳（毫秒）'"`
	Ctime           int64
	Utime           int64
}

// TableName 重命名表
func (SendRecord) TableName() string {
	return "send_records"
}

// SendRecordDAO 提供发送记录数据访问对象接口
type SendRecordDAO interface {
	// Create 写入一条发送记录
	Create(ctx context.Context, record SendRecord) (SendRecord, error)
	// GetByTaskID 按任务ID查询记录
	GetByTaskID(ctx context.Context, taskID string) ([]SendRecord, error)
	// List 按提交时间倒序分页
	List(ctx context.Context, offset, limit int) ([]SendRecord, error)
}

type sendRecordDAO struct {
	db *egorm.Component
}

// NewSendRecordDAO 创建发送记录DAO实例
func NewSendRecordDAO(db *egorm.Component) SendRecordDAO {
	return &sendRecordDAO{db: db}
}

func (d *sendRecordDAO) Create(ctx context.Context, record SendRecord) (SendRecord, error) {
	now := time.Now().UnixMilli()
	record.Ctime, record.Utime = now, now
	err := d.db.WithContext(ctx).Create(&record).Error
	return record, err
}

func (d *sendRecordDAO) GetByTaskID(ctx context.Context, taskID string) ([]SendRecord, error) {
	var records []SendRecord
	err := d.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

func (d *sendRecordDAO) List(ctx context.Context, offset, limit int) ([]SendRecord, error) {
	var records []SendRecord
	err := d.db.WithContext(ctx).
		Order("submitted_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, err
}
