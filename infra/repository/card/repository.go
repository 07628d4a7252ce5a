package card

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/card"
	repo "github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a card repository bound to the given session.
func New(db *gorm.DB) repo.CardRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *domain.Card) error {
	return r.db.WithContext(ctx).Create(toModel(c)).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var m Card
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	var m Card
	if err := r.db.WithContext(ctx).First(&m, "number = ?", number).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Card, error) {
	var m Card
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.StatusActive)).
		First(&m).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m), nil
}

func (r *repository) ListRequested(ctx context.Context) ([]*domain.Card, error) {
	var ms []Card
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusRequested)).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Card, 0, len(ms))
	for i := range ms {
		result = append(result, toDomain(&ms[i]))
	}
	return result, nil
}

func (r *repository) Update(ctx context.Context, c *domain.Card) error {
	return r.db.WithContext(ctx).Save(toModel(c)).Error
}

// UpdateRetry moves the retry counter from one known value to the next. The
// WHERE clause on the previous value makes concurrent PIN attempts lose the
// race instead of double-counting a single failure.
func (r *repository) UpdateRetry(
	ctx context.Context,
	id uuid.UUID,
	from, to int,
	blocked bool,
	blockType domain.BlockType,
) error {
	res := r.db.WithContext(ctx).
		Model(&Card{}).
		Where("id = ? AND retry_count = ?", id, from).
		Updates(map[string]any{
			"retry_count": to,
			"blocked":     blocked,
			"block_type":  string(blockType),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRetryConflict
	}
	return nil
}

func (r *repository) ResetRetry(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Card{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"retry_count": 0,
			"updated_at":  time.Now(),
		}).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrCardNotFound
	}
	return err
}
