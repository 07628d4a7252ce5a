package otp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/otp"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates an OTP repository bound to the given session.
func New(db *gorm.DB) repo.OTPRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *domain.OTP) error {
	return r.db.WithContext(ctx).Create(toModel(o)).Error
}

func (r *repository) GetLatest(
	ctx context.Context,
	userID uuid.UUID,
	purpose domain.Purpose,
) (*domain.OTP, error) {
	var m OTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND consumed = ?", userID, string(purpose), false).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *repository) InvalidateAll(
	ctx context.Context,
	userID uuid.UUID,
	purpose domain.Purpose,
) error {
	return r.db.WithContext(ctx).
		Model(&OTP{}).
		Where("user_id = ? AND purpose = ? AND consumed = ?", userID, string(purpose), false).
		Update("consumed", true).Error
}

// Consume marks the code used. The WHERE clause on consumed makes the second
// of two racing verifications fail instead of both succeeding.
func (r *repository) Consume(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&OTP{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPConsumed
	}
	return nil
}
