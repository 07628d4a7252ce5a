package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/user"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a user repository bound to the given session.
func New(db *gorm.DB) repo.UserRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(toModel(u)).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(toModel(u)).Error
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	var ms []User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.User, 0, len(ms))
	for i := range ms {
		result = append(result, toDomain(&ms[i]))
	}
	return result, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}
