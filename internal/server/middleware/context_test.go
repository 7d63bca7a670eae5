package middleware

import (
	"context"
	"testing"
)

func TestWithAuthContext_RoundTrip(t *testing.T) {
	ctx := WithAuthContext(context.Background(), "u-1", "s-1")

	userID, ok := GetUserID(ctx)
	if !ok || userID != "u-1" {
		t.Errorf("GetUserID = (%q, %v), want (u-1, true)", userID, ok)
	}
	sessionID, ok := GetSessionID(ctx)
	if !ok || sessionID != "s-1" {
		t.Errorf("GetSessionID = (%q, %v), want (s-1, true)", sessionID, ok)
	}
}

func TestGetUserID_NotSet(t *testing.T) {
	if _, ok := GetUserID(context.Background()); ok {
		t.Error("GetUserID on empty context should return false")
	}
	if _, ok := GetSessionID(context.Background()); ok {
		t.Error("GetSessionID on empty context should return false")
	}
}
