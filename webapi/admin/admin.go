// Package admin exposes the back-office surface: application review, card
// approval, account management and user listing. All routes require the
// admin role.
package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/config"
	domain "github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/middleware"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	usersvc "github.com/mhasanin/digibank/pkg/service/user"
	accountweb "github.com/mhasanin/digibank/webapi/account"
	cardweb "github.com/mhasanin/digibank/webapi/card"
	userweb "github.com/mhasanin/digibank/webapi/user"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers admin endpoints.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	cardSvc *cardsvc.Service,
	userSvc *usersvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	admin := middleware.RequireRole("admin")

	app.Get("/admin/applications", protected, admin, ListApplications(accountSvc))
	app.Post("/admin/applications/:id/approve", protected, admin, ApproveApplication(accountSvc))
	app.Post("/admin/applications/:id/reject", protected, admin, RejectApplication(accountSvc))
	app.Get("/admin/cards/requested", protected, admin, ListRequestedCards(cardSvc))
	app.Post("/admin/cards/:id/approve", protected, admin, ApproveCard(cardSvc))
	app.Post("/admin/accounts", protected, admin, OpenAccount(accountSvc))
	app.Post("/admin/accounts/:id/status", protected, admin, SetAccountStatus(accountSvc))
	app.Get("/admin/users", protected, admin, ListUsers(userSvc))
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Invalid ID", err, "ID must be a valid UUID", fiber.StatusBadRequest)
	}
	return id, nil
}

// ListApplications returns applications in the given status.
// @Summary List applications by status
// @Tags admin
// @Produce json
// @Param status query string false "Application status" default(verified)
// @Success 200 {object} common.Response
// @Router /admin/applications [get]
// @Security Bearer
func ListApplications(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := domain.ApplicationStatus(c.Query("status", string(domain.ApplicationVerified)))
		apps, err := accountSvc.ListApplications(c.Context(), status)
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

// ApproveApplication approves a verified application and opens the account.
// @Summary Approve an application
// @Tags admin
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /admin/applications/{id}/approve [post]
// @Security Bearer
func ApproveApplication(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		a, err := accountSvc.ApproveApplication(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Approval failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Application approved, account opened", accountweb.ToAccountDTO(a))
	}
}

// RejectApplication closes an open application.
// @Summary Reject an application
// @Tags admin
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/applications/{id}/reject [post]
// @Security Bearer
func RejectApplication(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := accountSvc.RejectApplication(c.Context(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Rejection failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Application rejected", nil)
	}
}

// ListRequestedCards returns cards awaiting approval.
// @Summary List requested cards
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Router /admin/cards/requested [get]
// @Security Bearer
func ListRequestedCards(cardSvc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cards, err := cardSvc.ListRequested(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list cards", err)
		}
		dtos := make([]*cardweb.CardDTO, 0, len(cards))
		for _, cd := range cards {
			dtos = append(dtos, cardweb.ToCardDTO(cd))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Cards fetched", dtos)
	}
}

// ApproveCard activates a requested card.
// @Summary Approve a card request
// @Tags admin
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/cards/{id}/approve [post]
// @Security Bearer
func ApproveCard(cardSvc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		card, err := cardSvc.Approve(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Approval failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card approved", cardweb.ToCardDTO(card))
	}
}

// OpenAccount opens an active account for a user, bypassing the workflow.
// @Summary Open an account directly
// @Tags admin
// @Accept json
// @Produce json
// @Param request body OpenAccountRequest true "User and account type"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /admin/accounts [post]
// @Security Bearer
func OpenAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[OpenAccountRequest](c)
		if input == nil {
			return err
		}
		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		a, err := accountSvc.OpenAccount(c.Context(), userID, domain.Type(input.AccountType))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to open account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account opened", accountweb.ToAccountDTO(a))
	}
}

// SetAccountStatus changes an account's lifecycle status.
// @Summary Change account status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body SetStatusRequest true "New status"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/accounts/{id}/status [post]
// @Security Bearer
func SetAccountStatus(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[SetStatusRequest](c)
		if input == nil {
			return err
		}
		if err := accountSvc.SetStatus(c.Context(), id, domain.Status(input.Status)); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to change status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Status changed", nil)
	}
}

// ListUsers returns a page of users.
// @Summary List users
// @Tags admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} common.Response
// @Router /admin/users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 100 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		users, err := userSvc.List(c.Context(), limit, offset)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list users", err)
		}
		dtos := make([]*userweb.UserDTO, 0, len(users))
		for _, u := range users {
			dtos = append(dtos, userweb.ToUserDTO(u))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users fetched", dtos)
	}
}
