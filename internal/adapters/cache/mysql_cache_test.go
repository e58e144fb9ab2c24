package cache

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

func setupMySQLCache(t *testing.T) (*MySQLCache, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS triage_cache")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, err := newMySQLCache(db, zap.NewNop(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return c, mock
}

func TestMySQLCache_Get(t *testing.T) {
	c, mock := setupMySQLCache(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT result, model_used, created_at, expires_at FROM triage_cache")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"result", "model_used", "created_at", "expires_at"}).
			AddRow(`{"category":"Deliveries","confidence":0.9,"security_risk":"LOW","risk_score":0,"metadata":{"carrier":"UPS"},"reasoning":"parcel"}`,
				"gpt-4", "2025-01-01 10:00:00", "2025-01-02 10:00:00"))

	entry, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", entry.Key)
	assert.Equal(t, core.CategoryDeliveries, entry.Result.Category)
	assert.Equal(t, core.DeliveryMetadata{Carrier: "UPS"}, entry.Result.Metadata)
	assert.Equal(t, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), entry.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_GetMissing(t *testing.T) {
	c, mock := setupMySQLCache(t)

	mock.ExpectQuery("SELECT (.+) FROM triage_cache").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"result", "model_used", "created_at", "expires_at"}))

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_Set(t *testing.T) {
	c, mock := setupMySQLCache(t)
	entry := testEntry("abc", time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO triage_cache")).
		WithArgs("abc", sqlmock.AnyArg(), "gpt-4",
			entry.CreatedAt.UTC().Format(sqlTimeLayout), entry.ExpiresAt.UTC().Format(sqlTimeLayout)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, c.Set(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_DeleteAndCleanup(t *testing.T) {
	c, mock := setupMySQLCache(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM triage_cache WHERE cache_key = ?")).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM triage_cache WHERE expires_at <= UTC_TIMESTAMP()")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, c.Delete(context.Background(), "abc"))
	require.NoError(t, c.Cleanup(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
