// Package common holds the response envelope, RFC 7807 problem responses
// and request binding shared by all handler packages.
package common

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/domain/user"
)

// Response is the success envelope.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails is an RFC 7807 style error body.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes a problem response. Extras may carry a detail
// string and an explicit status code, in that order of type. When no status
// is given the status is derived from the error via StatusFromError.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extras ...any) error {
	detail := ""
	status := 0
	for _, e := range extras {
		switch v := e.(type) {
		case string:
			detail = v
		case int:
			status = v
		}
	}
	if status == 0 {
		status = StatusFromError(err)
	}
	if detail == "" && err != nil && status < fiber.StatusInternalServerError {
		detail = err.Error()
	}
	return c.Status(status).JSON(ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// StatusFromError maps domain errors to HTTP status codes. Unknown errors
// map to 500 so internals never leak into responses.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrApplicationNotFound),
		errors.Is(err, card.ErrCardNotFound),
		errors.Is(err, otp.ErrOTPNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, user.ErrUserUnauthorized),
		errors.Is(err, user.ErrUserNotVerified):
		return fiber.StatusUnauthorized
	case errors.Is(err, user.ErrForbidden),
		errors.Is(err, account.ErrNotOwner),
		errors.Is(err, card.ErrNotCardOwner):
		return fiber.StatusForbidden
	case errors.Is(err, user.ErrUserExists),
		errors.Is(err, account.ErrDuplicateAccount),
		errors.Is(err, account.ErrDuplicateNumber),
		errors.Is(err, card.ErrCardAlreadyIssued),
		errors.Is(err, card.ErrRetryConflict),
		errors.Is(err, otp.ErrOTPConsumed),
		errors.Is(err, account.ErrApplicationClosed):
		return fiber.StatusConflict
	case errors.Is(err, account.ErrAmountMustBePositive),
		errors.Is(err, account.ErrAmountBelowMinimum),
		errors.Is(err, account.ErrSameAccount),
		errors.Is(err, account.ErrInvalidAccountType),
		errors.Is(err, account.ErrInvalidStatus),
		errors.Is(err, otp.ErrOTPExpired),
		errors.Is(err, otp.ErrOTPMismatch),
		errors.Is(err, otp.ErrInvalidPurpose):
		return fiber.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientBalance),
		errors.Is(err, account.ErrBelowMinimumBalance),
		errors.Is(err, account.ErrDailyLimitExceeded),
		errors.Is(err, account.ErrMonthlyLimitExceeded),
		errors.Is(err, account.ErrAccountNotActive),
		errors.Is(err, account.ErrApplicationNotVerified),
		errors.Is(err, card.ErrCardNotActive),
		errors.Is(err, card.ErrCardBlocked),
		errors.Is(err, card.ErrPINNotSet),
		errors.Is(err, card.ErrPINMismatch),
		errors.Is(err, card.ErrPermanentBlock):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
