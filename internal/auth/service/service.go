package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"projecthub/internal/auth/token"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/email"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
	"projecthub/pkg/secrets"
)

const invalidCredentials = "invalid email or password"

// UserStore is the read side of the user store.
type UserStore interface {
	FindByMail(ctx context.Context, mail string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, *token.Claims, error)
}

// Revoker records revoked token ids until the token would have expired.
type Revoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// LoginResult is a freshly issued access token and its owner.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service authenticates users and manages their access tokens.
type Service struct {
	users      UserStore
	tokens     TokenIssuer
	revoker    Revoker
	logger     *slog.Logger
	metrics    *metrics.Metrics
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBcryptCost sets the cost of the hash compared against for unknown
// emails. It should match the cost user passwords are stored with.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(users UserStore, tokens TokenIssuer, revoker Revoker, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		revoker:    revoker,
		logger:     slog.Default(),
		bcryptCost: 12,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and issues an access token. Unknown emails
// still pay for one bcrypt comparison so response time does not reveal
// which addresses have accounts.
func (s *Service) Login(ctx context.Context, mail, password string) (*LoginResult, error) {
	mail = email.Normalize(mail)
	if mail == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "mail and password are required")
	}

	user, err := s.users.FindByMail(ctx, mail)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		_ = secrets.Verify(password, s.dummy())
		return nil, s.loginFailed(ctx, "unknown_email")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if !errors.Is(err, secrets.ErrMismatch) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
		}
		return nil, s.loginFailed(ctx, "wrong_password")
	}

	signed, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &LoginResult{Token: signed, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Me returns the user the current token belongs to.
func (s *Service) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logger.InfoContext(ctx, "user logged out",
		"user_id", requestcontext.UserID(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) loginFailed(ctx context.Context, reason string) error {
	s.metrics.IncrementLoginFailures()
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := secrets.Hash("projecthub-dummy-password", s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to build dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
