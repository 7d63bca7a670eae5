// Package handler exposes the dev-only OTP lookup endpoint.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"roster-portal/internal/devotp"
)

// HTTPHandler serves GET /api/dev/otp. Mounted only when dev OTP mode is on;
// the config layer refuses to enable it in production.
type HTTPHandler struct {
	store devotp.Store
}

// NewHTTPHandler returns a handler backed by the given store.
func NewHTTPHandler(store devotp.Store) *HTTPHandler {
	return &HTTPHandler{store: store}
}

// Register mounts the dev OTP route on the router.
func (h *HTTPHandler) Register(r fiber.Router) {
	r.Get("/dev/otp", h.GetCode)
}

// GetCode returns the current plain OTP code for a phone, if one is open.
func (h *HTTPHandler) GetCode(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone query parameter is required",
			"code":  "BAD_REQUEST",
		})
	}
	code, ok := h.store.Get(c.UserContext(), phone)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no open code for this phone",
			"code":  "NOT_FOUND",
		})
	}
	return c.JSON(fiber.Map{"phone": phone, "code": code})
}
