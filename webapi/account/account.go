// Package account exposes the account, application and transfer endpoints.
package account

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/config"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/middleware"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers account endpoints. All routes require a customer session.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	customer := middleware.RequireRole("customer")

	app.Post("/account/applications", protected, customer, SubmitApplication(accountSvc, authSvc))
	app.Post("/account/applications/:id/verify", protected, customer, VerifyApplication(accountSvc, authSvc))
	app.Get("/account", protected, customer, ListAccounts(accountSvc, authSvc))
	app.Get("/account/:id", protected, customer, GetAccount(accountSvc, authSvc))
	app.Get("/account/:id/balance", protected, customer, GetBalance(accountSvc, authSvc))
	app.Get("/account/:id/transactions", protected, customer, GetTransactions(accountSvc, authSvc))
	app.Post("/account/:id/transfer", protected, customer, Transfer(accountSvc, authSvc))
}

func currentUser(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
	}
	userID, err := authSvc.GetCurrentUserID(token)
	if err != nil {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
	}
	return userID, nil
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Invalid ID", err, "ID must be a valid UUID", fiber.StatusBadRequest)
	}
	return id, nil
}

// SubmitApplication starts the account-opening workflow.
// @Summary Apply for a new account
// @Description Submits an account application. A verification code is emailed to the applicant; an admin approves the verified application.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body ApplicationRequest true "Application details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /account/applications [post]
// @Security Bearer
func SubmitApplication(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[ApplicationRequest](c)
		if input == nil {
			return err
		}
		ap, err := accountSvc.SubmitApplication(c.Context(), userID, domain.Type(input.AccountType), input.NationalID)
		if err != nil {
			log.Errorf("Failed to submit application: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to submit application", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Application submitted", ToApplicationDTO(ap))
	}
}

// VerifyApplication consumes the applicant's emailed code.
// @Summary Verify an account application
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body VerifyApplicationRequest true "Verification code"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /account/applications/{id}/verify [post]
// @Security Bearer
func VerifyApplication(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[VerifyApplicationRequest](c)
		if input == nil {
			return err
		}
		if err := accountSvc.VerifyApplication(c.Context(), userID, id, input.Code); err != nil {
			return common.ProblemDetailsJSON(c, "Verification failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Application verified", nil)
	}
}

// ListAccounts returns the caller's accounts.
// @Summary List own accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Router /account [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		accounts, err := accountSvc.ListAccounts(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		dtos := make([]*AccountDTO, 0, len(accounts))
		for _, a := range accounts {
			dtos = append(dtos, ToAccountDTO(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", dtos)
	}
}

// GetAccount returns one of the caller's accounts.
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /account/{id} [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		a, err := accountSvc.GetAccount(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountDTO(a))
	}
}

// GetBalance returns the account balance.
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /account/{id}/balance [get]
// @Security Bearer
func GetBalance(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		balance, err := accountSvc.GetBalance(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", fiber.Map{"balance": balance})
	}
}

// GetTransactions returns a page of the account's ledger rows.
// @Summary List account transactions
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /account/{id}/transactions [get]
// @Security Bearer
func GetTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		limit := c.QueryInt("limit", 50)
		offset := c.QueryInt("offset", 0)
		txs, err := accountSvc.GetTransactions(c.Context(), userID, id, limit, offset)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		dtos := make([]*TransactionDTO, 0, len(txs))
		for _, t := range txs {
			dtos = append(dtos, ToTransactionDTO(t))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", dtos)
	}
}

// Transfer moves funds to another account, authorized by the card PIN.
// @Summary Transfer funds
// @Description Transfers from the caller's account to the account with the given number. Requires the caller's card PIN. Limits and balance rules apply.
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Sender account ID"
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /account/{id}/transfer [post]
// @Security Bearer
func Transfer(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		result, err := accountSvc.Transfer(c.Context(), accountsvc.TransferInput{
			UserID:         userID,
			SenderID:       id,
			ReceiverNumber: input.ReceiverNumber,
			Amount:         input.Amount,
			PIN:            input.PIN,
		})
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", TransferResponse{
			Sender:         ToAccountDTO(result.Sender),
			Receiver:       ToAccountDTO(result.Receiver),
			Debit:          ToTransactionDTO(result.Debit),
			Credit:         ToTransactionDTO(result.Credit),
			DailyRemaining: result.DailyRemaining,
		})
	}
}
