package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/config"
)

const (
	// UserIDLocalKey holds the caller id read from the configured user header.
	UserIDLocalKey = "user_id"
	// CompanyIDLocalKey holds the company id read from the configured company header.
	CompanyIDLocalKey = "company_id"
)

// Actor copies the caller identity headers into context locals. Missing
// headers leave the locals unset; handlers decide whether identity is required.
func Actor(sec config.SecurityConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := strings.TrimSpace(c.Get(sec.UserIDHeader)); v != "" && sec.UserIDHeader != "" {
			c.Locals(UserIDLocalKey, v)
		}
		if v := strings.TrimSpace(c.Get(sec.CompanyIDHeader)); v != "" && sec.CompanyIDHeader != "" {
			c.Locals(CompanyIDLocalKey, v)
		}
		return c.Next()
	}
}

// UserID returns the caller id stored by Actor, or "".
func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals(UserIDLocalKey).(string)
	return v
}

// CompanyID returns the company id stored by Actor, or "".
func CompanyID(c *fiber.Ctx) string {
	v, _ := c.Locals(CompanyIDLocalKey).(string)
	return v
}
