package utils

import (
	"context"
	"time"
)

type contextKey string

const (
	ContextUserIDKey       contextKey = "userID"
	ContextSessionTokenKey contextKey = "sessionToken"
)

// SessionData is what the session middleware needs to know about a bearer
// token.
type SessionData struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(ContextUserIDKey).(uint)
	return userID, ok
}

func GetSessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextSessionTokenKey).(string)
	return token, ok
}

// WithSession stores the authenticated user and token on ctx.
func WithSession(ctx context.Context, s SessionData) context.Context {
	ctx = context.WithValue(ctx, ContextUserIDKey, s.UserID)
	return context.WithValue(ctx, ContextSessionTokenKey, s.Token)
}
