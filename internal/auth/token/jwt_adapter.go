package token

import (
	"projecthub/internal/platform/middleware"
)

func ToMiddlewareClaims(claims *Claims) *middleware.TokenClaims {
	userID, _ := claims.UserID()
	return &middleware.TokenClaims{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

// MiddlewareAdapter lets RequireAuth validate tokens without importing this package.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
