package admin

// OpenAccountRequest opens an active account directly for a user.
type OpenAccountRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	AccountType string `json:"account_type" validate:"required,oneof=saving current"`
}

// SetStatusRequest changes an account's lifecycle status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}
