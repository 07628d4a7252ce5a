package card

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/mhasanin/digibank/pkg/domain/card"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUpdateRetry(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}
	cardID := uuid.New()

	mock.ExpectExec(`UPDATE "cards" SET (.+) WHERE id = \$\d+ AND retry_count = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateRetry(context.Background(), cardID, 1, 2, false, domain.BlockNone)
	require.NoError(err)
	require.NoError(mock.ExpectationsWereMet())
}

func TestUpdateRetryConflict(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}
	cardID := uuid.New()

	// No row matches when the counter moved under a concurrent attempt.
	mock.ExpectExec(`UPDATE "cards" SET (.+) WHERE id = \$\d+ AND retry_count = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRetry(context.Background(), cardID, 1, 2, false, domain.BlockNone)
	require.ErrorIs(err, domain.ErrRetryConflict)
	require.NoError(mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "cards" WHERE id = \$\d+`).
		WillReturnError(gorm.ErrRecordNotFound)

	c, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
	assert.Nil(t, c)
}

func TestGetActiveByUser(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}
	cardID := uuid.New()
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "account_id", "number", "status", "retry_count", "blocked", "created_at",
	}).AddRow(cardID, userID, uuid.New(), "4000000000000001", "active", 0, false, time.Now())
	mock.ExpectQuery(`SELECT \* FROM "cards" WHERE user_id = \$\d+ AND status = \$\d+`).
		WithArgs(userID, "active", 1).
		WillReturnRows(rows)

	c, err := repo.GetActiveByUser(context.Background(), userID)
	require.NoError(err)
	require.Equal(cardID, c.ID)
	require.Equal(domain.StatusActive, c.Status)
}
