package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"roster-portal/internal/security"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	app := fiber.New()
	app.Get("/protected", RequireAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId":    UserID(c),
			"sessionId": SessionID(c),
		})
	})
	return app, tokens
}

func TestRequireAuth_NoToken(t *testing.T) {
	app, _ := newAuthTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	app, _ := newAuthTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	app, tokens := newAuthTestApp(t)
	access, _, _, err := tokens.IssueAccess("s-1", "u-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	app, tokens := newAuthTestApp(t)
	refresh, _, _, err := tokens.IssueRefresh("s-1", "u-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh token on protected route: status = %d, want 401", resp.StatusCode)
	}
}
