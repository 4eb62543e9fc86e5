package repository

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/repository/dao"
)

// SendRecordRepository 发送审计记录仓储
type SendRecordRepository interface {
	// Create 写入一条发送记录
	Create(ctx context.Context, record domain.SendRecord) error
	// FindByTaskID 按任务ID查记录
	FindByTaskID(ctx context.Context, taskID string) ([]domain.SendRecord, error)
	// List 按提交时间倒序分页
	List(ctx context.Context, offset, limit int) ([]domain.SendRecord, error)
}

type sendRecordRepository struct {
	dao dao.SendRecordDAO
}

// NewSendRecordRepository 创建发送记录仓储实例
func NewSendRecordRepository(d dao.SendRecordDAO) SendRecordRepository {
	return &sendRecordRepository{dao: d}
}

func (r *sendRecordRepository) Create(ctx context.Context, record domain.SendRecord) error {
	_, err := r.dao.Create(ctx, dao.SendRecord{
		ID:              record.ID,
		TaskID:          record.TaskID,
		TemplateCode:    record.TemplateCode,
		LanguageCode:    record.LanguageCode,
		Recipient:       record.Recipient,
		RenderedContent: record.RenderedContent,
		ChannelID:       record.ChannelID,
		ChannelType:     string(record.ChannelType),
		ChannelName:     record.ChannelName,
		Status:          string(record.Status),
		MessageID:       record.MessageID,
		ErrorCode:       record.ErrorCode,
		ErrorMessage:    record.ErrorMessage,
		SubmittedAt:     record.SubmittedAt,
		SentAt:          record.SentAt,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCreateRecordFailed, err)
	}
	return nil
}

func (r *sendRecordRepository) FindByTaskID(ctx context.Context, taskID string) ([]domain.SendRecord, error) {
	entities, err := r.dao.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toDomainRecords(entities), nil
}

func (r *sendRecordRepository) List(ctx context.Context, offset, limit int) ([]domain.SendRecord, error) {
	entities, err := r.dao.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return toDomainRecords(entities), nil
}

func toDomainRecords(entities []dao.SendRecord) []domain.SendRecord {
	records := make([]domain.SendRecord, 0, len(entities))
	for _, e := range entities {
		records = append(records, domain.SendRecord{
			ID:              e.ID,
			TaskID:          e.TaskID,
			TemplateCode:    e.TemplateCode,
			LanguageCode:    e.LanguageCode,
			Recipient:       e.Recipient,
			RenderedContent: e.RenderedContent,
			ChannelID:       e.ChannelID,
			ChannelType:     domain.ChannelType(e.ChannelType),
			ChannelName:     e.ChannelName,
			Status:          domain.SendRecordStatus(e.Status),
			MessageID:       e.MessageID,
			ErrorCode:       e.ErrorCode,
			ErrorMessage:    e.ErrorMessage,
			SubmittedAt:     e.SubmittedAt,
			SentAt:          e.SentAt,
		})
	}
	return records
}
