package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
)

// mockIdentityProvider accepts any well-formed credentials after a
// fabricated delay. It is a development stand-in with no security at all.
type mockIdentityProvider struct {
	logger  zerolog.Logger
	latency time.Duration
	now     func() time.Time
}

func NewMockIdentityProvider(logger zerolog.Logger, latency time.Duration) IdentityProvider {
	return &mockIdentityProvider{
		logger:  logger,
		latency: latency,
		now:     time.Now,
	}
}

func (p *mockIdentityProvider) Authenticate(ctx context.Context, email, _ string) (*models.User, error) {
	err := p.wait(ctx)
	if err != nil {
		return nil, err
	}

	name, _, _ := strings.Cut(email, "@")
	return p.newUser(email, name)
}

func (p *mockIdentityProvider) Register(ctx context.Context, params SignupParams) (*models.User, error) {
	err := p.wait(ctx)
	if err != nil {
		return nil, err
	}
	return p.newUser(params.Email, params.Name)
}

func (p *mockIdentityProvider) newUser(email, name string) (*models.User, error) {
	userUUID, err := uuid.NewV7()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	now := p.now()
	p.logger.Warn().
		Str("email", email).
		Msg("mock identity provider accepted credentials without checking them")
	return &models.User{
		ID:        userUUID.String(),
		Email:     email,
		Name:      name,
		Role:      models.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *mockIdentityProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type credential struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

// localIdentityProvider keeps registered users and their argon2id
// password hashes in storage, keyed by lowercased email.
type localIdentityProvider struct {
	logger  zerolog.Logger
	storage *storage.LocalStorage
	params  *argon2id.Params
	now     func() time.Time

	mu sync.Mutex
}

func NewLocalIdentityProvider(logger zerolog.Logger, localStorage *storage.LocalStorage) IdentityProvider {
	return &localIdentityProvider{
		logger:  logger,
		storage: localStorage,
		params:  argon2id.DefaultParams,
		now:     time.Now,
	}
}

func (p *localIdentityProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	p.mu.Lock()
	credentials, err := p.load(ctx)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	cred, ok := credentials[normalizeEmail(email)]
	if !ok {
		p.logger.Error().
			Str("email", email).
			Msg("user not found")
		return nil, ErrUserNotFound
	}

	match, err := argon2id.ComparePasswordAndHash(password, cred.PasswordHash)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		p.logger.Error().
			Str("user_id", cred.User.ID).
			Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	user := cred.User
	return &user, nil
}

func (p *localIdentityProvider) Register(ctx context.Context, params SignupParams) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	credentials, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(params.Email)
	if _, ok := credentials[key]; ok {
		p.logger.Error().
			Str("email", params.Email).
			Msg("user with this email already exists")
		return nil, ErrUserAlreadyExists
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(params.Password, p.params)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	now := p.now()
	user := models.User{
		ID:        userUUID.String(),
		Email:     params.Email,
		Name:      params.Name,
		Role:      models.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	credentials[key] = credential{User: user, PasswordHash: passwordHash}

	err = p.storage.Set(ctx, storage.CredentialsKey, credentials)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to persist credentials")
		return nil, err
	}
	p.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	return &user, nil
}

func (p *localIdentityProvider) load(ctx context.Context) (map[string]credential, error) {
	credentials := make(map[string]credential)
	_, err := p.storage.Get(ctx, storage.CredentialsKey, &credentials)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to load credentials")
		return nil, err
	}
	return credentials, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
