package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

type authServiceImpl struct {
	logger        zerolog.Logger
	storage       *storage.LocalStorage
	identity      IdentityProvider
	jwtIssuer     string
	jwtSigningKey []byte
	jwtTokenTTL   time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	session models.Session
	state   models.AuthState
	err     string
}

func NewAuthService(
	logger zerolog.Logger,
	localStorage *storage.LocalStorage,
	identity IdentityProvider,
	jwtIssuer string,
	jwtSigningKey []byte,
	jwtTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:        logger,
		storage:       localStorage,
		identity:      identity,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: jwtSigningKey,
		jwtTokenTTL:   jwtTokenTTL,
		now:           time.Now,
		state:         models.AuthStateLoading,
	}
}

func (s *authServiceImpl) Restore(ctx context.Context) models.AuthState {
	var token string
	tokenFound, err := s.storage.Get(ctx, storage.AuthTokenKey, &token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read auth token")
	}

	var user models.User
	userFound, err := s.storage.Get(ctx, storage.UserKey, &user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read user")
	}

	if !tokenFound || !userFound || token == "" {
		s.logger.Debug().Msg("no stored session")
		return s.setUnauthenticated()
	}

	err = validation.User(user)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("stored user is not valid")
		return s.setUnauthenticated()
	}

	claims, err := s.parseToken(token)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", user.ID).
			Msg("stored token is not valid")
		return s.setUnauthenticated()
	}
	if claims.Subject != user.ID {
		s.logger.Warn().
			Str("user_id", user.ID).
			Str("subject", claims.Subject).
			Msg("stored token belongs to another user")
		return s.setUnauthenticated()
	}

	s.mu.Lock()
	s.session = models.Session{User: &user, Token: token}
	s.state = models.AuthStateAuthenticated
	s.err = ""
	s.mu.Unlock()

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("restored session")
	return models.AuthStateAuthenticated
}

func (s *authServiceImpl) setUnauthenticated() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{}
	s.state = models.AuthStateUnauthenticated
	s.err = ""
	return s.state
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*models.Session, error) {
	err := validation.Struct(params)
	if err != nil {
		return nil, s.fail(err, "invalid login params")
	}

	s.setLoading()
	user, err := s.identity.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return nil, s.fail(err, "failed to authenticate user")
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("authenticated user")

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return session, nil
}

func (s *authServiceImpl) Signup(ctx context.Context, params SignupParams) (*models.Session, error) {
	err := validation.Struct(params)
	if err != nil {
		return nil, s.fail(err, "invalid signup params")
	}

	s.setLoading()
	user, err := s.identity.Register(ctx, params)
	if err != nil {
		return nil, s.fail(err, "failed to register user")
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("registered user")

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("signed up")
	return session, nil
}

func (s *authServiceImpl) startSession(ctx context.Context, user *models.User) (*models.Session, error) {
	err := validation.User(*user)
	if err != nil {
		return nil, s.fail(err, "identity provider returned an invalid user")
	}

	token, expiresAt, err := s.generateToken(user.ID)
	if err != nil {
		return nil, s.fail(err, "failed to generate token")
	}

	ttl := expiresAt.Sub(s.now())
	err = s.storage.SetWithExpiry(ctx, storage.AuthTokenKey, token, ttl)
	if err != nil {
		return nil, s.fail(err, "failed to persist token")
	}

	err = s.storage.Set(ctx, storage.UserKey, user)
	if err != nil {
		removeErr := s.storage.Remove(context.WithoutCancel(ctx), storage.AuthTokenKey)
		if removeErr != nil {
			s.logger.Warn().
				Err(removeErr).
				Msg("failed to remove token")
		}
		return nil, s.fail(err, "failed to persist user")
	}

	s.mu.Lock()
	u := *user
	s.session = models.Session{User: &u, Token: token}
	s.state = models.AuthStateAuthenticated
	s.err = ""
	session := s.session.Clone()
	s.mu.Unlock()

	return &session, nil
}

func (s *authServiceImpl) Logout(ctx context.Context) error {
	s.mu.Lock()
	userID := ""
	if s.session.User != nil {
		userID = s.session.User.ID
	}
	s.session = models.Session{}
	s.state = models.AuthStateUnauthenticated
	s.err = ""
	s.mu.Unlock()

	err := errors.Join(
		s.storage.Remove(ctx, storage.AuthTokenKey),
		s.storage.Remove(ctx, storage.UserKey),
	)
	if err != nil {
		return s.fail(err, "failed to remove session")
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Clone()
}

func (s *authServiceImpl) State() models.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *authServiceImpl) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

func (s *authServiceImpl) ValidateToken(token string) (*models.User, error) {
	s.mu.RLock()
	session := s.session.Clone()
	s.mu.RUnlock()

	if !session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if token != session.Token {
		return nil, ErrInvalidToken
	}

	claims, err := s.parseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject != session.User.ID {
		return nil, ErrInvalidToken
	}
	return session.User, nil
}

func (s *authServiceImpl) setLoading() {
	s.mu.Lock()
	s.state = models.AuthStateLoading
	s.err = ""
	s.mu.Unlock()
}

// fail records err as the session error and hands it back to the caller.
func (s *authServiceImpl) fail(err error, msg string) error {
	s.logger.Error().
		Err(err).
		Msg(msg)

	s.mu.Lock()
	s.state = models.AuthStateError
	s.err = err.Error()
	s.mu.Unlock()
	return err
}

func (s *authServiceImpl) parseToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSigningKey, nil
		},
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}
	return claims, nil
}

func (s *authServiceImpl) generateToken(userID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.jwtTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.jwtIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.jwtSigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}
