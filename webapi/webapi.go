// Package webapi provides the HTTP surface of the bank. It is organized into
// sub-packages per domain:
//   - auth: login
//   - user: signup, verification, password recovery
//   - account: accounts, applications, transfers
//   - card: card lifecycle and PIN management
//   - atm: card+PIN sessions, cash withdrawal, balance
//   - teller: counter cash and application review
//   - admin: approvals and back-office management
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"github.com/mhasanin/digibank/pkg/app"
	accountweb "github.com/mhasanin/digibank/webapi/account"
	adminweb "github.com/mhasanin/digibank/webapi/admin"
	atmweb "github.com/mhasanin/digibank/webapi/atm"
	authweb "github.com/mhasanin/digibank/webapi/auth"
	cardweb "github.com/mhasanin/digibank/webapi/card"
	"github.com/mhasanin/digibank/webapi/common"
	tellerweb "github.com/mhasanin/digibank/webapi/teller"
	userweb "github.com/mhasanin/digibank/webapi/user"
)

// SetupApp initializes Fiber with the bank's middleware stack and routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
		OAuth2RedirectUrl:    "/auth/login",
	}))

	// Rate limiting keyed on the originating client IP, honoring proxy
	// headers when present.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Digibank API is running")
	})

	authweb.Routes(fiberApp, a.AuthService)
	userweb.Routes(fiberApp, a.UserService, a.AuthService, a.Config)
	accountweb.Routes(fiberApp, a.AccountService, a.AuthService, a.Config)
	cardweb.Routes(fiberApp, a.CardService, a.AuthService, a.Config)
	atmweb.Routes(fiberApp, a.ATMService, a.AuthService, a.Config)
	tellerweb.Routes(fiberApp, a.TellerService, a.Config)
	adminweb.Routes(fiberApp, a.AccountService, a.CardService, a.UserService, a.Config)
	return fiberApp
}
