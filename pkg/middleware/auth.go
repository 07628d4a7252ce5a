// Package middleware provides JWT protection and role guards for Fiber routes.
package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mhasanin/digibank/pkg/config"
)

// JwtProtected verifies the bearer token and stores it in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ContextKey: "user",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Unauthorized",
				"status": fiber.StatusUnauthorized,
				"detail": "missing or invalid token",
			})
		},
	})
}

// RequireRole rejects requests whose token does not carry one of the given
// roles. Must run after JwtProtected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		role, _ := claims["role"].(string)
		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Forbidden",
				"status": fiber.StatusForbidden,
				"detail": "insufficient role",
			})
		}
		return c.Next()
	}
}
