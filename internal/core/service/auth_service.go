package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

// AuthService implements sign-up and sign-in.
type AuthService struct {
	store    ports.PrincipalStore
	hasher   ports.CredentialHasher
	codec    ports.TokenCodec
	limiter  ports.LoginLimiter
	recorder ports.AuthEventRecorder
	tokenTTL time.Duration
	log      zerolog.Logger
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithLoginLimiter throttles repeated failed sign-ins.
func WithLoginLimiter(l ports.LoginLimiter) AuthOption {
	return func(s *AuthService) {
		s.limiter = l
	}
}

// WithEventRecorder sends audit events to r.
func WithEventRecorder(r ports.AuthEventRecorder) AuthOption {
	return func(s *AuthService) {
		s.recorder = r
	}
}

// NewAuthService wires the service. A non-positive tokenTTL defers to the
// codec's default lifetime.
func NewAuthService(
	store ports.PrincipalStore,
	hasher ports.CredentialHasher,
	codec ports.TokenCodec,
	tokenTTL time.Duration,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		store:    store,
		hasher:   hasher,
		codec:    codec,
		recorder: nopRecorder{},
		tokenTTL: tokenTTL,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates a principal with the given role (USER when empty) and
// returns a token for it.
func (s *AuthService) SignUp(ctx context.Context, username, password string, role domain.Role) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrMissingField
	}
	if len(password) > domain.MaxPasswordBytes {
		return "", domain.ErrPasswordTooLong
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return "", domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed")
		return "", err
	}

	// A hash computed for a cancelled request is discarded, never persisted.
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.store.Create(ctx, &domain.Principal{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return "", err
		}
		return "", fmt.Errorf("sign up: %w", err)
	}

	token, err := s.codec.Sign(domain.Claims{Subject: created.ID, Username: created.Username}, s.tokenTTL)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("token signing failed")
		return "", err
	}

	s.recorder.Record(domain.AuthEvent{Kind: domain.EventSignUp, Username: created.Username, OccurredAt: now})
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("principal signed up")

	return token, nil
}

// SignIn checks username and password and returns a token. Unknown users and
// wrong passwords both yield domain.ErrInvalidCredentials, and the password
// is verified in both cases so they take comparable time.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login limiter check failed, continuing")
		} else if !allowed {
			s.recordFailure(username, domain.ErrTooManyAttempts)
			return "", domain.ErrTooManyAttempts
		}
	}

	principal, err := s.store.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrPrincipalNotFound) {
		return "", fmt.Errorf("sign in: %w", err)
	}

	var hash string
	if principal != nil {
		hash = principal.PasswordHash
	}
	if !s.hasher.Verify(password, hash) || principal == nil {
		if s.limiter != nil {
			if err := s.limiter.RecordFailure(ctx, username); err != nil {
				s.log.Warn().Err(err).Str("username", username).Msg("failed to record sign-in failure")
			}
		}
		s.recordFailure(username, domain.ErrInvalidCredentials)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.codec.Sign(domain.Claims{Subject: principal.ID, Username: principal.Username}, s.tokenTTL)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("token signing failed")
		return "", err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login limiter")
		}
	}
	s.recorder.Record(domain.AuthEvent{Kind: domain.EventSignIn, Username: principal.Username, OccurredAt: time.Now().UTC()})
	s.log.Debug().Str("username", username).Msg("principal signed in")

	return token, nil
}

func (s *AuthService) recordFailure(username string, reason error) {
	s.recorder.Record(domain.AuthEvent{
		Kind:       domain.EventSignInFailed,
		Username:   username,
		Reason:     domain.DenialReason(reason),
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("username", username).Str("reason", domain.DenialReason(reason)).Msg("sign-in rejected")
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}
