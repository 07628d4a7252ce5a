package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates an application repository bound to the given session.
func New(db *gorm.DB) repo.ApplicationRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ap *domain.Application) error {
	return r.db.WithContext(ctx).Create(toModel(ap)).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var m Application
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *repository) ListByStatus(
	ctx context.Context,
	status domain.ApplicationStatus,
) ([]*domain.Application, error) {
	var ms []Application
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Application, 0, len(ms))
	for i := range ms {
		result = append(result, toDomain(&ms[i]))
	}
	return result, nil
}

func (r *repository) Update(ctx context.Context, ap *domain.Application) error {
	return r.db.WithContext(ctx).Save(toModel(ap)).Error
}
