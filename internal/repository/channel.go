package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/pkg/crypto"
	"gitee.com/flycash/notification-gateway/internal/repository/dao"
)

// ChannelRepository 渠道仓储。写路径加密敏感属性，读路径解密，
// 上层拿到的永远是明文属性包。
type ChannelRepository interface {
	// FindByID 按ID查渠道，属性已解密
	FindByID(ctx context.Context, id int64) (domain.Channel, error)
	// Create 创建渠道，敏感属性落库前加密
	Create(ctx context.Context, channel domain.Channel) (domain.Channel, error)
	// Update 更新渠道
	Update(ctx context.Context, channel domain.Channel) error
	// List 列出所有渠道，属性已解密
	List(ctx context.Context) ([]domain.Channel, error)
}

type channelRepository struct {
	dao    dao.ChannelDAO
	crypto *crypto.PropertyCrypto
}

// NewChannelRepository 创建渠道仓储实例
func NewChannelRepository(d dao.ChannelDAO, c *crypto.PropertyCrypto) ChannelRepository {
	return &channelRepository{dao: d, crypto: c}
}

func (r *channelRepository) FindByID(ctx context.Context, id int64) (domain.Channel, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Channel{}, err
	}
	return r.toDomain(entity)
}

func (r *channelRepository) Create(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	entity, err := r.toEntity(channel)
	if err != nil {
		return domain.Channel{}, err
	}
	created, err := r.dao.Create(ctx, entity)
	if err != nil {
		return domain.Channel{}, err
	}
	channel.ID = created.ID
	return channel, nil
}

func (r *channelRepository) Update(ctx context.Context, channel domain.Channel) error {
	entity, err := r.toEntity(channel)
	if err != nil {
		return err
	}
	entity.ID = channel.ID
	return r.dao.Update(ctx, entity)
}

func (r *channelRepository) List(ctx context.Context) ([]domain.Channel, error) {
	entities, err := r.dao.List(ctx)
	if err != nil {
		return nil, err
	}
	channels := make([]domain.Channel, 0, len(entities))
	for _, entity := range entities {
		channel, err := r.toDomain(entity)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

func (r *channelRepository) toEntity(channel domain.Channel) (dao.Channel, error) {
	encrypted := r.crypto.EncryptSensitive(channel.Properties)
	props, err := json.Marshal(encrypted)
	if err != nil {
		return dao.Channel{}, fmt.Errorf("%w: 渠道属性序列化失败: %w", errs.ErrInvalidParameter, err)
	}
	return dao.Channel{
		Name:       channel.Name,
		Type:       string(channel.Type),
		Properties: string(props),
		Enabled:    channel.Enabled,
	}, nil
}

func (r *channelRepository) toDomain(entity dao.Channel) (domain.Channel, error) {
	typ, err := domain.ParseChannelType(entity.Type)
	if err != nil {
		return domain.Channel{}, err
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(entity.Properties), &props); err != nil {
		return domain.Channel{}, fmt.Errorf("%w: 渠道属性反序列化失败: %w", errs.ErrInvalidConfig, err)
	}
	return domain.Channel{
		ID:         entity.ID,
		Name:       entity.Name,
		Type:       typ,
		Properties: r.crypto.DecryptSensitive(props),
		Enabled:    entity.Enabled,
	}, nil
}
