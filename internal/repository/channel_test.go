package repository

import (
	"context"
	"strings"
	"testing"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/pkg/crypto"
	"gitee.com/flycash/notification-gateway/internal/repository/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannelDAO struct {
	stored map[int64]dao.Channel
	nextID int64
}

func newFakeChannelDAO() *fakeChannelDAO {
	return &fakeChannelDAO{stored: make(map[int64]dao.Channel)}
}

func (f *fakeChannelDAO) GetByID(_ context.Context, id int64) (dao.Channel, error) {
	c, ok := f.stored[id]
	if !ok {
		return dao.Channel{}, errs.ErrChannelNotFound
	}
	return c, nil
}

func (f *fakeChannelDAO) Create(_ context.Context, channel dao.Channel) (dao.Channel, error) {
	f.nextID++
	channel.ID = f.nextID
	f.stored[channel.ID] = channel
	return channel, nil
}

func (f *fakeChannelDAO) Update(_ context.Context, channel dao.Channel) error {
	f.stored[channel.ID] = channel
	return nil
}

func (f *fakeChannelDAO) List(_ context.Context) ([]dao.Channel, error) {
	out := make([]dao.Channel, 0, len(f.stored))
	for _, c := range f.stored {
		out = append(out, c)
	}
	return out, nil
}

func TestChannelRepository_EncryptOnWriteDecryptOnRead(t *testing.T) {
	t.Parallel()
	c, err := crypto.NewPropertyCrypto("repo-test-secret", nil)
	require.NoError(t, err)
	fake := newFakeChannelDAO()
	repo := NewChannelRepository(fake, c)

	created, err := repo.Create(context.Background(), domain.Channel{
		Name: "运营邮件",
		Type: domain.ChannelTypeEmail,
		Properties: map[string]any{
			"type":     "SMTP",
			"host":     "smtp.example.com",
			"password": "plain-password",
		},
		Enabled: true,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// 落库的 JSON 里只有密文，不出现明文口令
	stored := fake.stored[created.ID]
	assert.NotContains(t, stored.Properties, "plain-password")
	assert.Contains(t, stored.Properties, "enc:")

	// 读出来的属性已还原成明文
	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "plain-password", got.Properties["password"])
	assert.Equal(t, "smtp.example.com", got.Properties["host"])
	assert.Equal(t, domain.ChannelTypeEmail, got.Type)
}

func TestChannelRepository_InvalidStoredType(t *testing.T) {
	t.Parallel()
	c, err := crypto.NewPropertyCrypto("repo-test-secret", nil)
	require.NoError(t, err)
	fake := newFakeChannelDAO()
	fake.stored[7] = dao.Channel{ID: 7, Type: "FAX", Properties: "{}"}
	repo := NewChannelRepository(fake, c)

	_, err = repo.FindByID(context.Background(), 7)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestChannelRepository_ListDecryptsAll(t *testing.T) {
	t.Parallel()
	c, err := crypto.NewPropertyCrypto("repo-test-secret", nil)
	require.NoError(t, err)
	fake := newFakeChannelDAO()
	repo := NewChannelRepository(fake, c)

	for _, name := range []string{"a", "b"} {
		_, err := repo.Create(context.Background(), domain.Channel{
			Name:       name,
			Type:       domain.ChannelTypeIM,
			Properties: map[string]any{"type": "DINGTALK", "token": "tk-" + name},
			Enabled:    true,
		})
		require.NoError(t, err)
	}

	channels, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	for _, ch := range channels {
		token := ch.Properties["token"].(string)
		assert.True(t, strings.HasPrefix(token, "tk-"))
	}
}
