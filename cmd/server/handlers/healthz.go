package handlers

import (
	"context"
	"time"

	"note-keeper/internal/clients/mongo"
	"note-keeper/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const HealthzTimeout = 5 * time.Second

// Healthz reports whether the note store is reachable.
// @Summary Health check
// @Description Pings MongoDB
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func Healthz(c *fiber.Ctx) error {
	db := mongo.DB()
	if db == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "down",
			"error":  "database not initialized",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
	defer cancel()

	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		logger.L().Warn("health check ping failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "down",
			"error":  "database unreachable",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
