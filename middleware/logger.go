package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", ctx.IP()),
		}
		if claims := CurrentUser(ctx); claims != nil {
			fields = append(fields, zap.String("user", claims.Username))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			log.Error("request failed", fields...)
			return err
		}
		log.Info("request", fields...)
		return nil
	}
}
