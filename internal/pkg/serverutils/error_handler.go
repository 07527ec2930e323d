package serverutils

import (
	"errors"

	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every failure as {"error": "..."}.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := err.Error()

		var apiErr *service.APIError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Status
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("MOCKAPI", "Request failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": message,
			})
		}
		return ctx.Status(status).JSON(fiber.Map{"error": message})
	}
}

// RequestLogger writes one debug line per request.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			if handlerErr := ctx.App().ErrorHandler(ctx, err); handlerErr != nil {
				return handlerErr
			}
		}
		log.Debug("MOCKAPI", "Request served", map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     ctx.Response().StatusCode(),
			"request_id": ctx.Get("X-Request-Id"),
		})
		return nil
	}
}
