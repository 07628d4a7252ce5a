// Package card exposes the card lifecycle endpoints: request, PIN management
// and blocking.
package card

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/config"
	domain "github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/middleware"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	"github.com/mhasanin/digibank/webapi/common"
)

// Routes registers card endpoints. All routes require a customer session.
func Routes(app *fiber.App, cardSvc *cardsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	customer := middleware.RequireRole("customer")

	app.Post("/card", protected, customer, RequestCard(cardSvc, authSvc))
	app.Get("/card", protected, customer, GetCard(cardSvc, authSvc))
	app.Post("/card/:id/pin/request", protected, customer, RequestPINSet(cardSvc, authSvc))
	app.Post("/card/:id/pin", protected, customer, SetPIN(cardSvc, authSvc))
	app.Post("/card/:id/block", protected, customer, Block(cardSvc, authSvc))
	app.Post("/card/:id/unblock/request", protected, customer, RequestUnblock(cardSvc, authSvc))
	app.Post("/card/:id/unblock", protected, customer, Unblock(cardSvc, authSvc))
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

// RequestCard asks for a card on one of the caller's active accounts.
// @Summary Request a card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body RequestCardRequest true "Target account"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /card [post]
// @Security Bearer
func RequestCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[RequestCardRequest](c)
		if input == nil {
			return err
		}
		accountID, err := uuid.Parse(input.AccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		card, err := cardSvc.Request(c.Context(), userID, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to request card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Card requested", ToCardDTO(card))
	}
}

// GetCard returns the caller's active card.
// @Summary Get own card
// @Tags cards
// @Produce json
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /card [get]
// @Security Bearer
func GetCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		card, err := cardSvc.ListByUser(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Card not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card fetched", ToCardDTO(card))
	}
}

// RequestPINSet emails a code authorizing a PIN change.
// @Summary Request a PIN-set code
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card/{id}/pin/request [post]
// @Security Bearer
func RequestPINSet(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := cardSvc.RequestPINSet(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to request PIN code", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "PIN code sent", nil)
	}
}

// SetPIN consumes the code and stores the new PIN.
// @Summary Set the card PIN
// @Tags cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body SetPINRequest true "Code and new PIN"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /card/{id}/pin [post]
// @Security Bearer
func SetPIN(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[SetPINRequest](c)
		if input == nil {
			return err
		}
		if err := cardSvc.SetPIN(c.Context(), userID, id, input.Code, input.PIN); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to set PIN", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "PIN set", nil)
	}
}

// Block blocks the caller's card.
// @Summary Block a card
// @Tags cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body BlockRequest false "Block type, defaults to temporary"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /card/{id}/block [post]
// @Security Bearer
func Block(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[BlockRequest](c)
		if input == nil {
			return err
		}
		if err := cardSvc.Block(c.Context(), userID, id, domain.BlockType(input.BlockType)); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to block card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card blocked", nil)
	}
}

// RequestUnblock emails a code authorizing an unblock.
// @Summary Request an unblock code
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card/{id}/unblock/request [post]
// @Security Bearer
func RequestUnblock(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := cardSvc.RequestUnblock(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to request unblock code", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Unblock code sent", nil)
	}
}

// Unblock consumes the code and clears the block.
// @Summary Unblock a card
// @Tags cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body UnblockRequest true "Unblock code"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /card/{id}/unblock [post]
// @Security Bearer
func Unblock(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c, authSvc)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[UnblockRequest](c)
		if input == nil {
			return err
		}
		if err := cardSvc.Unblock(c.Context(), userID, id, input.Code); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to unblock card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card unblocked", nil)
	}
}
