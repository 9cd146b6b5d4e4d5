package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MsgAllFieldsRequired is the field-agnostic registration validation message.
const MsgAllFieldsRequired = "all fields are required"

const outcomeError = "error"

var credentialVerifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credential_verifications_total",
		Help: "Credential verifications by outcome",
	},
	[]string{"outcome"},
)

// UserService implements registration and credential verification.
type UserService struct {
	repo     repository.UserRepository
	hasher   *auth.Hasher
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, hasher *auth.Hasher, producer *event.Producer, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	UserID    int64
}

func (in RegisterInput) complete() bool {
	return in.Username != "" && in.Password != "" && in.FirstName != "" && in.LastName != "" && in.Email != ""
}

// Register creates a user, storing an argon2id digest in place of the password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !input.complete() {
		return nil, apperrors.InvalidInput(MsgAllFieldsRequired)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: digest,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		UserID:       input.UserID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("username", user.Username),
	)

	return user, nil
}

// VerifyCredentials checks a username and password. Unknown usernames and
// wrong passwords both yield OutcomeRejected and cost the same hashing work.
// Lookup failures and corrupt digests are returned as errors.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (domain.Verification, error) {
	v, err := s.verify(ctx, username, password)

	outcome := v.Outcome.String()
	if err != nil {
		outcome = outcomeError
	}
	credentialVerifications.WithLabelValues(outcome).Inc()

	return v, err
}

func (s *UserService) verify(ctx context.Context, username, password string) (domain.Verification, error) {
	rejected := domain.Verification{Outcome: domain.OutcomeRejected}

	if username == "" {
		s.hasher.VerifyDummy(password)
		return rejected, nil
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return rejected, nil
		}
		return domain.Verification{}, fmt.Errorf("look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("verify password for %q: %w", username, err)
	}
	if !ok {
		return rejected, nil
	}

	return domain.Verification{Outcome: domain.OutcomeAuthenticated, User: user}, nil
}

// Authenticate adapts VerifyCredentials to a boolean check for HTTP Basic auth.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	v, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return false, err
	}
	return v.Authenticated(), nil
}

// ListUsers returns every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns the user with the given username, or ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
