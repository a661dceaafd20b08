package middleware

import (
	"docflow-backend/config"
	authutils "docflow-backend/lib/utils/auth-utils"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthorizationRequired() fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(config.Conf.Auth.JWTSecret),
		},
	})
}

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

func IsAdmin(ctx *fiber.Ctx) bool {
	claims := authutils.GetClaims(ctx)
	isAdmin, _ := claims["admin"].(bool)
	return isAdmin
}
