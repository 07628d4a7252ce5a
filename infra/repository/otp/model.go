package otp

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/mhasanin/digibank/pkg/domain/otp"
)

// OTP is the otps table row.
type OTP struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_otps_user_purpose;not null"`
	Purpose   string    `gorm:"type:varchar(30);index:idx_otps_user_purpose;not null"`
	Code      string    `gorm:"type:varchar(10);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName specifies the table name for the OTP model.
func (OTP) TableName() string {
	return "otps"
}

func toModel(o *domain.OTP) *OTP {
	return &OTP{
		ID:        o.ID,
		UserID:    o.UserID,
		Purpose:   string(o.Purpose),
		Code:      o.Code,
		ExpiresAt: o.ExpiresAt,
		Consumed:  o.Consumed,
		CreatedAt: o.CreatedAt,
	}
}

func toDomain(m *OTP) *domain.OTP {
	return &domain.OTP{
		ID:        m.ID,
		UserID:    m.UserID,
		Purpose:   domain.Purpose(m.Purpose),
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		Consumed:  m.Consumed,
		CreatedAt: m.CreatedAt,
	}
}
