// Package atm exposes the ATM surface: card+PIN login issuing a short-lived
// session token, then PIN-confirmed withdrawals and balance checks.
package atm

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/middleware"
	atmsvc "github.com/mhasanin/digibank/pkg/service/atm"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	accountweb "github.com/mhasanin/digibank/webapi/account"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers ATM endpoints. Withdraw and balance require the session
// token minted by Login.
func Routes(app *fiber.App, atmSvc *atmsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	atmRole := middleware.RequireRole("atm")

	app.Post("/atm/login", Login(atmSvc, authSvc))
	app.Post("/atm/withdraw", protected, atmRole, Withdraw(atmSvc))
	app.Post("/atm/balance", protected, atmRole, Balance(atmSvc))
}

func sessionCard(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session", fiber.StatusUnauthorized)
	}
	cardID, err := authsvc.ClaimUUID(token, "card_id")
	if err != nil {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Unauthorized", nil, "invalid session", fiber.StatusUnauthorized)
	}
	return cardID, nil
}

// Login verifies the card number and PIN and mints an ATM session token.
// @Summary ATM login
// @Description Authenticates a card by number and PIN. On success returns a short-lived session token bound to the card. PIN failures count toward the card's retry limit.
// @Tags atm
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Card credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /atm/login [post]
func Login(atmSvc *atmsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		card, err := atmSvc.Login(c.Context(), input.CardNumber, input.PIN)
		if err != nil {
			return common.ProblemDetailsJSON(c, "ATM login failed", err)
		}
		token, err := authSvc.GenerateATMToken(card.UserID, card.ID, card.AccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ATM session started", fiber.Map{"token": token})
	}
}

// Withdraw dispenses cash from the session card's account.
// @Summary ATM withdrawal
// @Tags atm
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "PIN and amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /atm/withdraw [post]
// @Security Bearer
func Withdraw(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := sessionCard(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		tx, err := atmSvc.Withdraw(c.Context(), cardID, input.PIN, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Withdrawal failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal successful", accountweb.ToTransactionDTO(tx))
	}
}

// Balance shows the session card account's balance after a PIN check.
// @Summary ATM balance check
// @Tags atm
// @Accept json
// @Produce json
// @Param request body BalanceRequest true "PIN"
// @Success 200 {object} common.Response
// @Failure 422 {object} common.ProblemDetails
// @Router /atm/balance [post]
// @Security Bearer
func Balance(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := sessionCard(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[BalanceRequest](c)
		if input == nil {
			return err
		}
		balance, err := atmSvc.Balance(c.Context(), cardID, input.PIN)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Balance check failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", fiber.Map{"balance": balance})
	}
}
