package user

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/user"
)

// User is the users table row.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	HashedPassword string    `gorm:"type:varchar(100);not null"`
	Names          string    `gorm:"type:varchar(100)"`
	Role           string    `gorm:"type:varchar(10);not null;default:'customer'"`
	Verified       bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func toModel(u *domain.User) *User {
	return &User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		Names:          u.Names,
		Role:           string(u.Role),
		Verified:       u.Verified,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toDomain(m *User) *domain.User {
	return &domain.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		HashedPassword: m.HashedPassword,
		Names:          m.Names,
		Role:           domain.Role(m.Role),
		Verified:       m.Verified,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
