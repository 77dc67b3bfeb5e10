package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check is a named dependency probe used by HealthCheck.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

const healthTimeout = 2 * time.Second

// HealthCheck godoc
// @Summary Dependency health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		results := make(fiber.Map, len(checks))
		for _, chk := range checks {
			if err := chk.Probe(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", chk.Name+" unavailable")
			}
			results[chk.Name] = "ok"
		}
		return c.JSON(fiber.Map{"status": "healthy", "checks": results})
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Root is the greeting served at /.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Hello World"})
	}
}
