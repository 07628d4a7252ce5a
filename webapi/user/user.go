package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/middleware"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	usersvc "github.com/mhasanin/digibank/pkg/service/user"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers signup, verification and password recovery endpoints.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	app.Post("/user/signup", Signup(userSvc))
	app.Post("/user/verify", VerifySignup(userSvc))
	app.Post("/user/password/forgot", ForgotPassword(userSvc))
	app.Post("/user/password/reset", ResetPassword(userSvc))
	app.Get("/user/me", middleware.JwtProtected(cfg.Auth.Jwt), Me(userSvc, authSvc))
}

// Signup registers a new customer and emails a verification code.
// @Summary Register a new user
// @Description Creates an unverified customer account. A verification code is sent to the given email address.
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /user/signup [post]
func Signup(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SignupRequest](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Signup(c.Context(), input.Username, input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Signup failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User created, verification code sent", ToUserDTO(u))
	}
}

// VerifySignup consumes the emailed code and activates the user.
// @Summary Verify a signup
// @Tags users
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification code"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /user/verify [post]
func VerifySignup(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[VerifyRequest](c)
		if input == nil {
			return err
		}
		if err := userSvc.VerifySignup(c.Context(), input.Email, input.Code); err != nil {
			return common.ProblemDetailsJSON(c, "Verification failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User verified", nil)
	}
}

// ForgotPassword emails a reset code. Always answers 200 so the endpoint
// cannot be used to probe which addresses are registered.
// @Summary Request a password reset code
// @Tags users
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Registered email"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /user/password/forgot [post]
func ForgotPassword(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ForgotPasswordRequest](c)
		if input == nil {
			return err
		}
		if err := userSvc.RequestPasswordReset(c.Context(), input.Email); err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "If the address is registered, a code was sent", nil)
	}
}

// ResetPassword consumes the reset code and stores the new password.
// @Summary Reset a password
// @Tags users
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset code and new password"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /user/password/reset [post]
func ResetPassword(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ResetPasswordRequest](c)
		if input == nil {
			return err
		}
		if err := userSvc.ResetPassword(c.Context(), input.Email, input.Code, input.NewPassword); err != nil {
			return common.ProblemDetailsJSON(c, "Password reset failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Password updated", nil)
	}
}

// Me returns the authenticated user.
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /user/me [get]
// @Security Bearer
func Me(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		userID, err := authSvc.GetCurrentUserID(token)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		u, err := userSvc.Get(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User fetched", ToUserDTO(u))
	}
}
