package dao

import (
	"context"
	"testing"

	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func TestTemplateDAO_GetByCode(t *testing.T) {
	t.Parallel()
	gdb, mock := newMockDB(t)
	d := NewTemplateDAO(gdb)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "ctime", "utime"}).
		AddRow(1, "ORDER_SHIPPED", "发货通知", 1700000000000, 1700000000000)
	mock.ExpectQuery("SELECT \\* FROM `templates` WHERE code = \\?").
		WithArgs("ORDER_SHIPPED", 1).
		WillReturnRows(rows)

	got, err := d.GetByCode(context.Background(), "ORDER_SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "ORDER_SHIPPED", got.Code)
	assert.Equal(t, "发货通知", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateDAO_GetByCode_NotFound(t *testing.T) {
	t.Parallel()
	gdb, mock := newMockDB(t)
	d := NewTemplateDAO(gdb)

	mock.ExpectQuery("SELECT \\* FROM `templates` WHERE code = \\?").
		WithArgs("NO_SUCH_CODE", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "ctime", "utime"}))

	_, err := d.GetByCode(context.Background(), "NO_SUCH_CODE")
	assert.ErrorIs(t, err, errs.ErrTemplateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateDAO_GetLanguageTemplate_NotFound(t *testing.T) {
	t.Parallel()
	gdb, mock := newMockDB(t)
	d := NewTemplateDAO(gdb)

	mock.ExpectQuery("SELECT \\* FROM `language_templates` WHERE template_id = \\? AND language = \\?").
		WithArgs(int64(1), "ja-JP", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "language", "content", "ctime", "utime"}))

	_, err := d.GetLanguageTemplate(context.Background(), 1, "ja-JP")
	assert.ErrorIs(t, err, errs.ErrLanguageTemplateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
