// Package handler exposes the health endpoint.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker verifies the policy engine can compile and evaluate.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HTTPHandler serves GET /healthz.
type HTTPHandler struct {
	db     Pinger
	policy PolicyChecker
}

// NewHTTPHandler returns a health handler. Either dependency may be nil and is
// then skipped.
func NewHTTPHandler(db Pinger, policy PolicyChecker) *HTTPHandler {
	return &HTTPHandler{db: db, policy: policy}
}

// Register mounts the health route on the app.
func (h *HTTPHandler) Register(r fiber.Router) {
	r.Get("/healthz", h.Health)
}

// Health reports ok when the database and policy engine respond.
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"reason": "database",
			})
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"reason": "policy",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
