package atm

// LoginRequest authenticates a card at the ATM.
type LoginRequest struct {
	CardNumber string `json:"card_number" validate:"required,len=16,numeric"`
	PIN        string `json:"pin" validate:"required,len=4,numeric"`
}

// WithdrawRequest dispenses cash from the session card's account.
type WithdrawRequest struct {
	PIN    string `json:"pin" validate:"required,len=4,numeric"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// BalanceRequest re-checks the PIN before showing the balance.
type BalanceRequest struct {
	PIN string `json:"pin" validate:"required,len=4,numeric"`
}
