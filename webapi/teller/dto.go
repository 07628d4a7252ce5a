package teller

// CashRequest moves counter cash on the account with the given number.
type CashRequest struct {
	AccountNumber string `json:"account_number" validate:"required,len=14,numeric"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
}
