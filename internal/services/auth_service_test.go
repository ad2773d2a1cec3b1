package services

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

const (
	testIssuer     = "taskrabbit-test"
	testSigningKey = "test-signing-key"
)

func newTestAuthService(s *storage.LocalStorage, identity IdentityProvider) AuthService {
	return NewAuthService(zerolog.Nop(), s, identity, testIssuer, []byte(testSigningKey), time.Hour)
}

func newTestMockIdentity() IdentityProvider {
	return NewMockIdentityProvider(zerolog.Nop(), 0)
}

func newTestLocalIdentity(s *storage.LocalStorage) IdentityProvider {
	p := NewLocalIdentityProvider(zerolog.Nop(), s)
	p.(*localIdentityProvider).params = &argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	return p
}

func TestAuthService_StartsLoadingThenRestoresUnauthenticated(t *testing.T) {
	svc := newTestAuthService(newTestStorage(t), newTestMockIdentity())
	assert.Equal(t, models.AuthStateLoading, svc.State())

	assert.Equal(t, models.AuthStateUnauthenticated, svc.Restore(context.Background()))
	assert.False(t, svc.Session().IsAuthenticated())
	assert.Empty(t, svc.Error())
}

func TestAuthService_LoginThenRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestMockIdentity())

	session, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	require.True(t, session.IsAuthenticated())
	assert.Equal(t, "a@b.com", session.User.Email)
	assert.Equal(t, "a", session.User.Name)
	assert.Equal(t, models.RoleMember, session.User.Role)
	assert.Equal(t, models.AuthStateAuthenticated, svc.State())

	restored := newTestAuthService(s, newTestMockIdentity())
	assert.Equal(t, models.AuthStateAuthenticated, restored.Restore(ctx))
	assert.Equal(t, "a@b.com", restored.Session().User.Email)
	assert.Equal(t, session.Token, restored.Session().Token)
}

func TestAuthService_LogoutThenRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestMockIdentity())

	_, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, models.AuthStateUnauthenticated, svc.State())
	assert.False(t, svc.Session().IsAuthenticated())

	restored := newTestAuthService(s, newTestMockIdentity())
	assert.Equal(t, models.AuthStateUnauthenticated, restored.Restore(ctx))
}

func TestAuthService_LoginValidation(t *testing.T) {
	svc := newTestAuthService(newTestStorage(t), newTestMockIdentity())

	_, err := svc.Login(context.Background(), LoginParams{Email: "nope", Password: ""})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"email":    "Invalid email address",
		"password": "Password is required",
	}, validation.Fields(err))
	assert.Equal(t, models.AuthStateError, svc.State())
	assert.Equal(t, err.Error(), svc.Error())
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := newTestAuthService(newTestStorage(t), newTestMockIdentity())

	_, err := svc.Signup(context.Background(), SignupParams{
		Email:           "a@b.com",
		Password:        "secret-pass",
		ConfirmPassword: "other-pass",
		Name:            "Ann",
	})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"confirmPassword": "Passwords do not match",
	}, validation.Fields(err))
}

func TestAuthService_SignupUsesGivenName(t *testing.T) {
	svc := newTestAuthService(newTestStorage(t), newTestMockIdentity())

	session, err := svc.Signup(context.Background(), SignupParams{
		Email:           "a@b.com",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
		Name:            "Ann",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", session.User.Name)
	assert.Equal(t, models.AuthStateAuthenticated, svc.State())
}

func TestAuthService_PersistenceFailure(t *testing.T) {
	backend := newFlakyBackend()
	backend.setBroken(true)
	svc := newTestAuthService(storage.NewLocalStorage(zerolog.Nop(), backend), newTestMockIdentity())

	session, err := svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "pw"})
	require.ErrorIs(t, err, errBackendDown)
	assert.Nil(t, session)
	assert.Equal(t, models.AuthStateError, svc.State())
	assert.NotEmpty(t, svc.Error())
	assert.False(t, svc.Session().IsAuthenticated())
}

func TestAuthService_MockLatencyHonoursContext(t *testing.T) {
	identity := NewMockIdentityProvider(zerolog.Nop(), time.Hour)
	svc := newTestAuthService(newTestStorage(t), identity)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.AuthStateError, svc.State())
}

func TestAuthService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newTestStorage(t), newTestMockIdentity())

	_, err := svc.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	session, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)

	_, err = svc.ValidateToken(session.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.ValidateToken(session.Token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthService_ExpiredTokenIsNotRestored(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestMockIdentity())
	svc.(*authServiceImpl).now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	_, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	restored := newTestAuthService(s, newTestMockIdentity())
	assert.Equal(t, models.AuthStateUnauthenticated, restored.Restore(ctx))
}

func TestAuthService_TokenFromAnotherKeyIsNotRestored(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestMockIdentity())

	_, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	restored := NewAuthService(zerolog.Nop(), s, newTestMockIdentity(), testIssuer, []byte("other-key"), time.Hour)
	assert.Equal(t, models.AuthStateUnauthenticated, restored.Restore(ctx))
}

func TestAuthService_InvalidStoredUserIsNotRestored(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestMockIdentity())

	session, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	user := *session.User
	user.Email = "not-an-email"
	require.NoError(t, s.Set(ctx, storage.UserKey, user))

	restored := newTestAuthService(s, newTestMockIdentity())
	assert.Equal(t, models.AuthStateUnauthenticated, restored.Restore(ctx))
}

func TestLocalIdentityProvider(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := newTestAuthService(s, newTestLocalIdentity(s))

	signup := SignupParams{
		Email:           "Ann@Example.com",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
		Name:            "Ann",
	}
	session, err := svc.Signup(ctx, signup)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, models.AuthStateError, svc.State())

	_, err = svc.Login(ctx, LoginParams{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUserPasswordMismatch)

	_, err = svc.Login(ctx, LoginParams{Email: "bob@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	loggedIn, err := svc.Login(ctx, LoginParams{Email: "ann@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, loggedIn.User.ID)
	assert.Equal(t, "Ann", loggedIn.User.Name)
	assert.Equal(t, models.AuthStateAuthenticated, svc.State())
	assert.Empty(t, svc.Error())
}
