package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository bound to the given session.
func New(db *gorm.DB) repo.AccountRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(toModel(a)).Error; err != nil {
		return mapDuplicate(err)
	}
	return nil
}

// mapDuplicate translates unique violations into domain sentinels:
// uniq_active_user_type means the user already holds an active account of
// that type, any other violation is a number collision.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		if pgErr.ConstraintName == "uniq_active_user_type" {
			return domain.ErrDuplicateAccount
		}
		return domain.ErrDuplicateNumber
	}
	return err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "number = ?", number).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetActiveByUserAndType(
	ctx context.Context,
	userID uuid.UUID,
	t domain.Type,
) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND status = ?", userID, string(t), string(domain.StatusActive)).
		First(&m).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	var ms []Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&ms).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.Account, 0, len(ms))
	for i := range ms {
		result = append(result, toDomain(&ms[i]))
	}
	return result, nil
}

func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("balance", balance).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return err
}
