package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger creates a Fiber middleware for request/response logging.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
			logger.Error("http request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Duration("duration", duration),
				zap.Int("status", status),
				zap.Error(err))
		} else {
			logger.Info("http request completed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Duration("duration", duration),
				zap.Int("status", status))
		}

		return err
	}
}
