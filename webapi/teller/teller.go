// Package teller exposes the cashier surface: counter cash movements, card
// unblocking and application review. All routes require the teller role.
package teller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/middleware"
	tellersvc "github.com/mhasanin/digibank/pkg/service/teller"
	accountweb "github.com/mhasanin/digibank/webapi/account"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers teller endpoints.
func Routes(app *fiber.App, tellerSvc *tellersvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	teller := middleware.RequireRole("teller", "admin")

	app.Post("/teller/deposit", protected, teller, DepositCash(tellerSvc))
	app.Post("/teller/withdraw", protected, teller, WithdrawCash(tellerSvc))
	app.Post("/teller/cards/:id/unblock", protected, teller, UnblockCard(tellerSvc))
	app.Get("/teller/applications", protected, teller, PendingApplications(tellerSvc))
}

// DepositCash credits counter cash to an account.
// @Summary Teller cash deposit
// @Tags teller
// @Accept json
// @Produce json
// @Param request body CashRequest true "Account number and amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /teller/deposit [post]
// @Security Bearer
func DepositCash(tellerSvc *tellersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CashRequest](c)
		if input == nil {
			return err
		}
		tx, err := tellerSvc.DepositCash(c.Context(), input.AccountNumber, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", accountweb.ToTransactionDTO(tx))
	}
}

// WithdrawCash debits counter cash from an account.
// @Summary Teller cash withdrawal
// @Tags teller
// @Accept json
// @Produce json
// @Param request body CashRequest true "Account number and amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /teller/withdraw [post]
// @Security Bearer
func WithdrawCash(tellerSvc *tellersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CashRequest](c)
		if input == nil {
			return err
		}
		tx, err := tellerSvc.WithdrawCash(c.Context(), input.AccountNumber, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Withdrawal failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal successful", accountweb.ToTransactionDTO(tx))
	}
}

// UnblockCard clears a temporary block on a card.
// @Summary Teller card unblock
// @Tags teller
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /teller/cards/{id}/unblock [post]
// @Security Bearer
func UnblockCard(tellerSvc *tellersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid card ID", err, "Card ID must be a valid UUID", fiber.StatusBadRequest)
		}
		if err := tellerSvc.UnblockCard(c.Context(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Unblock failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card unblocked", nil)
	}
}

// PendingApplications lists applications awaiting verification or approval.
// @Summary List open applications
// @Tags teller
// @Produce json
// @Success 200 {object} common.Response
// @Router /teller/applications [get]
// @Security Bearer
func PendingApplications(tellerSvc *tellersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apps, err := tellerSvc.PendingApplications(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list applications", err)
		}
		dtos := make([]*accountweb.ApplicationDTO, 0, len(apps))
		for _, ap := range apps {
			dtos = append(dtos, accountweb.ToApplicationDTO(ap))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Applications fetched", dtos)
	}
}
