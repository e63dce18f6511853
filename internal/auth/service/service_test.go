package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,TokenIssuer,Revoker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"projecthub/internal/auth/service/mocks"
	"projecthub/internal/auth/token"
	"projecthub/internal/platform/logger"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/secrets"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx     context.Context
	users   *mocks.MockUserStore
	tokens  *mocks.MockTokenIssuer
	revoker *mocks.MockRevoker
	metrics *metrics.Metrics
	now     time.Time
	service *Service
	user    *models.User
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.users = mocks.NewMockUserStore(ctrl)
	s.tokens = mocks.NewMockTokenIssuer(ctrl)
	s.revoker = mocks.NewMockRevoker(ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.service = New(s.users, s.tokens, s.revoker,
		WithLogger(logger.Discard()),
		WithMetrics(s.metrics),
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return s.now }),
	)

	hash, err := secrets.Hash("correct horse", bcrypt.MinCost)
	s.Require().NoError(err)
	s.user = &models.User{ID: 3, Mail: "alice@example.com", PasswordHash: hash}
}

func (s *AuthServiceSuite) TestLogin() {
	s.Run("valid credentials issue a token", func() {
		exp := s.now.Add(time.Hour)
		s.users.EXPECT().FindByMail(gomock.Any(), "alice@example.com").Return(s.user, nil)
		s.tokens.EXPECT().Issue(int64(3)).Return("signed", &token.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp), ID: "jti"},
		}, nil)

		res, err := s.service.Login(s.ctx, " Alice@Example.com ", "correct horse")
		s.Require().NoError(err)
		s.Equal("signed", res.Token)
		s.True(res.ExpiresAt.Equal(exp))
		s.Equal(int64(3), res.User.ID)
	})

	s.Run("wrong password and unknown email fail identically", func() {
		s.users.EXPECT().FindByMail(gomock.Any(), "alice@example.com").Return(s.user, nil)
		_, wrongPassword := s.service.Login(s.ctx, "alice@example.com", "nope")

		s.users.EXPECT().FindByMail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)
		_, unknownEmail := s.service.Login(s.ctx, "ghost@example.com", "nope")

		s.True(dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
		s.Equal(wrongPassword.Error(), unknownEmail.Error())
		s.Equal(float64(2), testutil.ToFloat64(s.metrics.LoginFailures))
	})

	s.Run("store failure is internal", func() {
		s.users.EXPECT().FindByMail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := s.service.Login(s.ctx, "alice@example.com", "x")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing fields are rejected before lookup", func() {
		_, err := s.service.Login(s.ctx, "", "x")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthServiceSuite) TestMe() {
	s.users.EXPECT().FindByID(gomock.Any(), int64(3)).Return(s.user, nil)
	u, err := s.service.Me(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal("alice@example.com", u.Mail)

	s.users.EXPECT().FindByID(gomock.Any(), int64(4)).Return(nil, sentinel.ErrNotFound)
	_, err = s.service.Me(s.ctx, 4)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthServiceSuite) TestLogout() {
	s.Run("revokes for the remaining lifetime", func() {
		s.revoker.EXPECT().RevokeToken(gomock.Any(), "jti", 30*time.Minute).Return(nil)
		s.NoError(s.service.Logout(s.ctx, "jti", s.now.Add(30*time.Minute)))
	})

	s.Run("expired token needs no revocation", func() {
		s.NoError(s.service.Logout(s.ctx, "jti", s.now.Add(-time.Minute)))
	})

	s.Run("revocation failure is internal", func() {
		s.revoker.EXPECT().RevokeToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		err := s.service.Logout(s.ctx, "jti", s.now.Add(time.Minute))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
