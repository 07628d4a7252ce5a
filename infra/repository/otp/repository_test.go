package otp

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/mhasanin/digibank/pkg/domain/otp"
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

func TestConsume(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}

	mock.ExpectExec(`UPDATE "otps" SET (.+) WHERE id = \$\d+ AND consumed = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(repo.Consume(context.Background(), uuid.New()))
	require.NoError(mock.ExpectationsWereMet())
}

func TestConsumeTwice(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}

	// The conditional update matches nothing once the code is consumed, so a
	// concurrent second verify loses.
	mock.ExpectExec(`UPDATE "otps" SET (.+) WHERE id = \$\d+ AND consumed = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Consume(context.Background(), uuid.New())
	require.ErrorIs(err, domain.ErrOTPConsumed)
}

func TestGetLatestNotFound(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	repo := repository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "otps"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetLatest(context.Background(), uuid.New(), domain.PurposeSignupVerify)
	require.ErrorIs(err, domain.ErrOTPNotFound)
}
