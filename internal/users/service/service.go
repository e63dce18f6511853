package service

import (
	"context"
	"errors"
	"log/slog"

	"projecthub/internal/platform/metrics"
	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/email"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
	"projecthub/pkg/secrets"
)

// Store is the persistence the user service needs.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// Service manages user accounts and their passwords.
type Service struct {
	store      Store
	bcryptCost int
	logger     *slog.Logger
	metrics    *metrics.Metrics
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

// WithBcryptCost sets the work factor for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "database unreachable")
	}
	return nil
}

// Create hashes the password and stores the account.
func (s *Service) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	hash, err := secrets.Hash(in.Password, s.bcryptCost)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u := &models.User{
		Nom:          in.Nom,
		Prenom:       in.Prenom,
		Telephone:    in.Telephone,
		Mail:         email.Normalize(in.Mail),
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user created",
		"user_id", u.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. The stored hash is left untouched when verification fails.
func (s *Service) ChangePassword(ctx context.Context, in models.PasswordChange) error {
	u, err := s.store.FindByID(ctx, in.UserID)
	if err != nil {
		return wrapUserErr(err, "failed to load user")
	}

	if err := secrets.Verify(in.OldPassword, u.PasswordHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			s.logger.WarnContext(ctx, "password change rejected",
				"user_id", u.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
			return dErrors.New(dErrors.CodeUnauthorized, "current password is incorrect")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	hash, err := secrets.Hash(in.NewPassword, s.bcryptCost)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	if err := s.store.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return wrapUserErr(err, "failed to update password")
	}

	s.logger.InfoContext(ctx, "password changed",
		"user_id", u.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func wrapUserErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
