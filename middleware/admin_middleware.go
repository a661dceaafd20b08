package middleware

import (
	apimodels "docflow-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired ручное управление голосованиями
func AdminRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if !IsAdmin(ctx) {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
		}
		return ctx.Next()
	}
}
