package application

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
)

// Application is the applications table row.
type Application struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	AccountType string    `gorm:"type:varchar(10);not null"`
	NationalID  string    `gorm:"type:varchar(30);not null"`
	Status      string    `gorm:"type:varchar(25);index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for the Application model.
func (Application) TableName() string {
	return "applications"
}

func toModel(ap *domain.Application) *Application {
	return &Application{
		ID:          ap.ID,
		UserID:      ap.UserID,
		AccountType: string(ap.AccountType),
		NationalID:  ap.NationalID,
		Status:      string(ap.Status),
		CreatedAt:   ap.CreatedAt,
		UpdatedAt:   ap.UpdatedAt,
	}
}

func toDomain(m *Application) *domain.Application {
	return &domain.Application{
		ID:          m.ID,
		UserID:      m.UserID,
		AccountType: domain.Type(m.AccountType),
		NationalID:  m.NationalID,
		Status:      domain.ApplicationStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
