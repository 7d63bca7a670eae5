// Package handler exposes roster search and player assignment over HTTP.
package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"roster-portal/internal/audit"
	"roster-portal/internal/platform/rbac"
	playerdomain "roster-portal/internal/player/domain"
	"roster-portal/internal/player/service"
	"roster-portal/internal/server/middleware"
)

// HTTPHandler serves the player search and assignment routes.
type HTTPHandler struct {
	svc     *service.PlayerService
	users   rbac.UserGetter
	auditor audit.AuditLogger
}

// NewHTTPHandler returns a handler for the player routes. auditor may be nil.
func NewHTTPHandler(svc *service.PlayerService, users rbac.UserGetter, auditor audit.AuditLogger) *HTTPHandler {
	return &HTTPHandler{svc: svc, users: users, auditor: auditor}
}

// Register mounts the player routes on the router. The router must already
// carry the auth middleware.
func (h *HTTPHandler) Register(r fiber.Router) {
	r.Get("/players/search", h.Search)
	r.Post("/me/player", h.AssignSelf)
	r.Post("/admin/users/:id/player", h.AdminAssign)
}

type playerResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FullName     string `json:"fullName"`
	ClubName     string `json:"clubName"`
	JerseyNumber int    `json:"jerseyNumber"`
}

type searchResponse struct {
	Players []playerResponse `json:"players"`
}

// Search handles GET /api/players/search?q=.
func (h *HTTPHandler) Search(c *fiber.Ctx) error {
	players, err := h.svc.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", "internal error")
	}
	out := searchResponse{Players: make([]playerResponse, 0, len(players))}
	for _, p := range players {
		out.Players = append(out.Players, toPlayerResponse(p))
	}
	return c.JSON(out)
}

type assignRequest struct {
	PlayerID string `json:"playerId"`
}

// AssignSelf handles POST /api/me/player. One-time: a second call returns 409.
func (h *HTTPHandler) AssignSelf(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	userID := middleware.UserID(c)
	if err := h.svc.AssignSelf(c.UserContext(), userID, req.PlayerID); err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAssignment(c, userID, userID, req.PlayerID, "player_assign_self")
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminAssign handles POST /api/admin/users/:id/player. Admin-only; may
// overwrite an existing link.
func (h *HTTPHandler) AdminAssign(c *fiber.Ctx) error {
	adminID, err := rbac.RequireAdmin(c.UserContext(), h.users)
	if err != nil {
		switch {
		case errors.Is(err, rbac.ErrUnauthenticated):
			return respondError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
		case errors.Is(err, rbac.ErrForbidden):
			return respondError(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
		default:
			return respondError(c, fiber.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	targetID := c.Params("id")
	if err := h.svc.AdminAssign(c.UserContext(), targetID, req.PlayerID); err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAssignment(c, adminID, targetID, req.PlayerID, "player_assign_admin")
	return c.SendStatus(fiber.StatusNoContent)
}

func toPlayerResponse(p *playerdomain.Player) playerResponse {
	return playerResponse{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		FullName:     p.FullName(),
		ClubName:     p.ClubName,
		JerseyNumber: p.JerseyNumber,
	}
}

func (h *HTTPHandler) logAssignment(c *fiber.Ctx, actorID, targetID, playerID, action string) {
	if h.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]string{"targetUserId": targetID, "playerId": playerID})
	h.auditor.LogEvent(c.UserContext(), actorID, action, "player_assignment", string(meta))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message, Code: code})
}

func (h *HTTPHandler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAlreadyAssigned):
		return respondError(c, fiber.StatusConflict, "ALREADY_ASSIGNED", err.Error())
	case errors.Is(err, service.ErrPlayerNotFound):
		return respondError(c, fiber.StatusNotFound, "PLAYER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrSelfAssignmentDisabled):
		return respondError(c, fiber.StatusForbidden, "SELF_ASSIGNMENT_DISABLED", err.Error())
	default:
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
