package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey    = contextKey{"user_id"}
	sessionIDKey = contextKey{"session_id"}
)

// WithAuthContext returns ctx carrying the authenticated user_id and session_id.
// Handlers and services can read these via GetUserID and GetSessionID.
func WithAuthContext(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok && v != ""
}
