// FILE: internal/pkg/serverutils/token_middleware.go
package serverutils

import (
	"strings"

	"chemviz-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

const userIdLocal = "user_id"

// TokenMiddleware resolves "Authorization: Token <key>". Requests without the
// header continue as guests; a malformed or unknown token is rejected.
func TokenMiddleware(auth service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return ctx.Next()
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Token" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token header."})
		}

		user, err := auth.Authenticate(ctx.UserContext(), parts[1])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": err.Error()})
		}

		ctx.Locals(userIdLocal, user.Id)
		return ctx.Next()
	}
}

// UserId returns the authenticated user, or nil for guests.
func UserId(ctx *fiber.Ctx) *int64 {
	id, ok := ctx.Locals(userIdLocal).(int64)
	if !ok {
		return nil
	}
	return &id
}
