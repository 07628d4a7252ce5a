package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

// debitTypes are the outflow row types that count toward the daily and
// monthly limits: transfer debits and cash withdrawals.
var debitTypes = []string{string(domain.TxDebit), string(domain.TxWithdraw)}

type repository struct {
	db *gorm.DB
}

// New creates a ledger repository bound to the given session.
func New(db *gorm.DB) repo.TransactionRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(toModel(tx)).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *repository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, 0, len(ms))
	for i := range ms {
		result = append(result, toDomain(&ms[i]))
	}
	return result, nil
}

func (r *repository) SumDebitsSince(
	ctx context.Context,
	accountID uuid.UUID,
	since time.Time,
) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_account_id = ? AND type IN ? AND status = ? AND created_at >= ?",
			accountID, debitTypes, string(domain.TxSuccess), since).
		Scan(&total).Error
	return total, err
}

func (r *repository) CountDebitsSince(
	ctx context.Context,
	accountID uuid.UUID,
	since time.Time,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("from_account_id = ? AND type IN ? AND status = ? AND created_at >= ?",
			accountID, debitTypes, string(domain.TxSuccess), since).
		Count(&count).Error
	return count, err
}
