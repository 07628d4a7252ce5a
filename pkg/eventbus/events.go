package eventbus

import (
	"github.com/google/uuid"
)

// Event type names, used for subscription and as Kafka topic suffixes.
const (
	EventOTPIssued         = "otp.issued"
	EventTransferCompleted = "transfer.completed"
	EventCardBlocked       = "card.blocked"
)

// OTPIssued is published when a one-time code is created. The mailer
// subscriber delivers the code to the user.
type OTPIssued struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Code    string    `json:"code"`
	Purpose string    `json:"purpose"`
}

func (OTPIssued) Type() string { return EventOTPIssued }

// TransferCompleted is published after a transfer commits.
type TransferCompleted struct {
	SenderAccountID   uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	Amount            int64     `json:"amount"`
	SenderEmail       string    `json:"sender_email,omitempty"`
}

func (TransferCompleted) Type() string { return EventTransferCompleted }

// CardBlocked is published when consecutive PIN failures block a card.
type CardBlocked struct {
	UserID     uuid.UUID `json:"user_id"`
	CardID     uuid.UUID `json:"card_id"`
	Email      string    `json:"email,omitempty"`
	CardNumber string    `json:"card_number"` // masked
}

func (CardBlocked) Type() string { return EventCardBlocked }
