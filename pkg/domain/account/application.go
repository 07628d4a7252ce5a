package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrApplicationNotFound is returned when an application cannot be found.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrApplicationNotVerified is returned when approval is attempted on an
	// application the applicant has not verified yet.
	ErrApplicationNotVerified = errors.New("application not verified")
	// ErrApplicationClosed is returned when an application has already been
	// approved or rejected.
	ErrApplicationClosed = errors.New("application already approved or rejected")
)

// ApplicationStatus tracks the onboarding stages of an account application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending_verification"
	ApplicationVerified ApplicationStatus = "verified"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is an account-opening request. The applicant verifies it with
// an emailed code; an admin approval then creates the account.
type Application struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountType Type
	NationalID  string
	Status      ApplicationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewApplication creates a pending application for the given user.
func NewApplication(userID uuid.UUID, accType Type, nationalID string) (*Application, error) {
	if accType != TypeSaving && accType != TypeCurrent {
		return nil, ErrInvalidAccountType
	}
	if nationalID == "" {
		return nil, errors.New("national ID is required")
	}
	return &Application{
		ID:          uuid.New(),
		UserID:      userID,
		AccountType: accType,
		NationalID:  nationalID,
		Status:      ApplicationPending,
		CreatedAt:   time.Now(),
	}, nil
}

// Verify moves a pending application to verified.
func (ap *Application) Verify() error {
	if ap.Status != ApplicationPending {
		return ErrApplicationClosed
	}
	ap.Status = ApplicationVerified
	ap.UpdatedAt = time.Now()
	return nil
}

// Approve marks a verified application approved.
func (ap *Application) Approve() error {
	switch ap.Status {
	case ApplicationVerified:
		ap.Status = ApplicationApproved
		ap.UpdatedAt = time.Now()
		return nil
	case ApplicationPending:
		return ErrApplicationNotVerified
	default:
		return ErrApplicationClosed
	}
}

// Reject closes the application. Pending and verified applications can both
// be rejected.
func (ap *Application) Reject() error {
	if ap.Status == ApplicationApproved || ap.Status == ApplicationRejected {
		return ErrApplicationClosed
	}
	ap.Status = ApplicationRejected
	ap.UpdatedAt = time.Now()
	return nil
}
