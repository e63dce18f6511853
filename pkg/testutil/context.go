package testutil

import (
	"net/http"
	"time"

	"projecthub/pkg/requestcontext"
)

// WithUserID simulates the auth middleware for handlers behind RequireAuth.
func WithUserID(req *http.Request, userID int64) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithAuth sets both the caller and the token that authenticated it.
func WithAuth(req *http.Request, userID int64, jti string, expiresAt time.Time) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithToken(ctx, jti, expiresAt)
	return req.WithContext(ctx)
}
