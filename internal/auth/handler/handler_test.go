package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"projecthub/internal/auth/handler/mocks"
	"projecthub/internal/auth/revocation"
	"projecthub/internal/auth/service"
	"projecthub/internal/auth/token"
	"projecthub/internal/platform/logger"
	"projecthub/internal/platform/middleware"
	umodels "projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	jwt     *token.JWTService
	trl     *revocation.MemoryTRL
	router  chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.jwt = token.NewJWTService("test-key", "projecthub", time.Hour)
	s.trl = revocation.NewMemoryTRL()

	log := logger.Discard()
	requireAuth := middleware.RequireAuth(token.NewMiddlewareAdapter(s.jwt), s.trl, log)
	limiter := middleware.NewIPRateLimiter(0.001, 2, log, nil)

	s.router = chi.NewRouter()
	New(s.service, log, requireAuth, limiter.Middleware).Register(s.router)
}

func (s *AuthHandlerSuite) bearer(req *http.Request, signed string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+signed)
	return req
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("success returns token and user", func() {
		exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		s.service.EXPECT().Login(gomock.Any(), "alice@example.com", "pw").Return(&service.LoginResult{
			Token:     "signed-token",
			ExpiresAt: exp,
			User:      &umodels.User{ID: 3, Mail: "alice@example.com", PasswordHash: "$2a$secret"},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login",
			map[string]string{"email": "alice@example.com", "password": "pw"}))
		testutil.AssertStatusOK(s.T(), rr)
		s.NotContains(rr.Body.String(), "$2a$secret")
		testutil.AssertJSONContains(s.T(), rr, "token", "signed-token")
		testutil.AssertJSONContains(s.T(), rr, "expires_at", "2030-01-01T00:00:00Z")
		testutil.AssertJSONHasKey(s.T(), rr, "user")
	})

	s.Run("missing password", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login",
			map[string]string{"email": "alice@example.com"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *AuthHandlerSuite) TestLoginInvalidCredentialsThenThrottled() {
	s.service.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")).Times(2)

	body := map[string]string{"email": "alice@example.com", "password": "bad"}
	for range 2 {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login", body))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
		testutil.AssertErrorMessage(s.T(), rr, "invalid email or password")
	}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login", body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "too_many_requests")
	s.NotEmpty(rr.Header().Get("Retry-After"))
}

func (s *AuthHandlerSuite) TestMe() {
	signed, _, err := s.jwt.Issue(3)
	s.Require().NoError(err)

	s.Run("valid token", func() {
		s.service.EXPECT().Me(gomock.Any(), int64(3)).Return(&umodels.User{ID: 3, Mail: "alice@example.com"}, nil)

		rr := testutil.DoRequest(s.router, s.bearer(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"), signed))
		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Body.String(), `"mail":"alice@example.com"`)
	})

	s.Run("missing token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("token signed with another key", func() {
		forged, _, err := token.NewJWTService("other-key", "projecthub", time.Hour).Issue(3)
		s.Require().NoError(err)

		rr := testutil.DoRequest(s.router, s.bearer(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"), forged))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *AuthHandlerSuite) TestLogoutRevokesToken() {
	signed, claims, err := s.jwt.Issue(3)
	s.Require().NoError(err)

	s.service.EXPECT().Logout(gomock.Any(), claims.ID, gomock.Any()).DoAndReturn(
		func(ctx context.Context, jti string, exp time.Time) error {
			s.True(exp.Equal(claims.ExpiresAt.Time))
			return s.trl.RevokeToken(ctx, jti, time.Until(exp))
		})

	rr := testutil.DoRequest(s.router, s.bearer(testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout"), signed))
	testutil.AssertStatusOK(s.T(), rr)

	rr = testutil.DoRequest(s.router, s.bearer(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"), signed))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	testutil.AssertErrorMessage(s.T(), rr, "token has been revoked")
}

func (s *AuthHandlerSuite) TestHandlersReadCallerFromContext() {
	h := New(s.service, logger.Discard(), nil, nil)

	s.Run("me", func() {
		s.service.EXPECT().Me(gomock.Any(), int64(11)).Return(&umodels.User{ID: 11, Mail: "eve@example.com"}, nil)

		req := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"), 11)
		rr := testutil.DoRequest(http.HandlerFunc(h.HandleMe), req)
		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Body.String(), "eve@example.com")
	})

	s.Run("logout passes jti and expiry", func() {
		exp := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)
		s.service.EXPECT().Logout(gomock.Any(), "jti-42", exp).Return(nil)

		req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout"), 11, "jti-42", exp)
		rr := testutil.DoRequest(http.HandlerFunc(h.HandleLogout), req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "message", "logged out")
	})
}
