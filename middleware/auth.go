package middleware

import (
	"errors"
	"strings"

	"botsprinter/repositories"
	"botsprinter/services"
	"botsprinter/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const claimsKey = "userClaims"

// AuthMiddleware validates the bearer token, reloads its user and stores the
// claims in Locals. Username and role come from the stored user so demotions
// and deletions apply to tokens already issued.
func AuthMiddleware(secret string, db *gorm.DB) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing Authorization header",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid Authorization header format",
			})
		}

		claims, err := utils.VerifyToken(secret, tokenParts[1])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid token",
				"error":   err.Error(),
			})
		}

		user, err := repositories.NewUserRepository(db).GetByID(ctx.UserContext(), claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: User no longer exists",
			})
		}
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to load user",
			})
		}
		claims.Username = user.Username
		claims.Role = user.Role

		ctx.SetUserContext(services.WithActor(ctx.UserContext(), services.Actor{
			Username: user.Username,
			IP:       ctx.IP(),
		}))
		ctx.Locals("userID", claims.UserID)
		ctx.Locals("sessionID", claims.SessionID)
		ctx.Locals(claimsKey, claims)
		return ctx.Next()
	}
}

// CurrentUser returns the claims stored by AuthMiddleware, or nil.
func CurrentUser(ctx *fiber.Ctx) *utils.TokenClaims {
	claims, _ := ctx.Locals(claimsKey).(*utils.TokenClaims)
	return claims
}

// RequirePermission rejects callers whose role may not perform op.
func RequirePermission(op services.Operation) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		claims := CurrentUser(ctx)
		if claims == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid user",
			})
		}
		if !services.CanPerform(claims.Role, op) {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: You do not have permission",
			})
		}
		return ctx.Next()
	}
}
