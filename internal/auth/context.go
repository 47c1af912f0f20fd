package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the acting user's id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the acting user's id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// RequestUserID returns the acting user of r, replying 401 when there is none.
func RequestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
	}
	return userID, ok
}
