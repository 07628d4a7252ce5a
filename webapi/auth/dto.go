package auth

// LoginInput represents the login request body. Identity is a username or
// an email address.
type LoginInput struct {
	Identity string `json:"identity" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
