package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"authgate/config"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/infra/auth"
	"authgate/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes for the persistence contracts ---

// fakeUserRepo guards its map with a mutex so the unique-username check
// stays atomic under concurrent registrations, like the real database
// constraint.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	clone := *user
	r.users[user.Username] = &clone

	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

type fakeRefreshTokenRepo struct {
	tokens map[string]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*entity.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Record(_ context.Context, token *entity.RefreshToken) error {
	clone := *token
	r.tokens[token.TokenHash] = &clone

	return nil
}

func (r *fakeRefreshTokenRepo) Exists(_ context.Context, tokenHash string) (bool, error) {
	_, ok := r.tokens[tokenHash]

	return ok, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, tokenHash string) error {
	delete(r.tokens, tokenHash)

	return nil
}

func (r *fakeRefreshTokenRepo) RevokeExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeFactory struct {
	userRepo  *fakeUserRepo
	tokenRepo *fakeRefreshTokenRepo
}

func (f *fakeFactory) UserRepo() repository.UserRepository {
	return f.userRepo
}

func (f *fakeFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.tokenRepo
}

// fakeTxManager runs the callback directly; the fakes are already atomic.
type fakeTxManager struct {
	factory *fakeFactory
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

// --- Fixtures ---

type authServiceFixtures struct {
	service   usecase.AuthUsecase
	userRepo  *fakeUserRepo
	tokenRepo *fakeRefreshTokenRepo
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 4}}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	factory := &fakeFactory{
		userRepo:  newFakeUserRepo(),
		tokenRepo: newFakeRefreshTokenRepo(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAuthService(
		&fakeTxManager{factory: factory},
		auth.NewBcryptHasher(cfg),
		tokenService,
		logger,
	)

	return authServiceFixtures{
		service:   service,
		userRepo:  factory.userRepo,
		tokenRepo: factory.tokenRepo,
	}
}

func registerTestUser(t *testing.T, fx authServiceFixtures, username, password string) {
	t.Helper()

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
}

// --- Register ---

func TestAuthService_Register_EmptyPasswordRejected(t *testing.T) {
	fx := createTestAuthService(t)

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username: "alice",
		Password: "",
		Email:    "alice@example.com",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrPasswordRequired))
	// Rejected before any side effect: nothing was stored.
	assert.Empty(t, fx.userRepo.users)
}

func TestAuthService_Register_StoresHashedPassword(t *testing.T) {
	fx := createTestAuthService(t)

	registerTestUser(t, fx, "alice", "hunter2!")

	stored, ok := fx.userRepo.users["alice"]
	require.True(t, ok)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "hunter2!", stored.PasswordHash)
	assert.Equal(t, "alice@example.com", stored.Email)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	fx := createTestAuthService(t)

	registerTestUser(t, fx, "alice", "hunter2!")

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username: "alice",
		Password: "another-password",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrRegistrationFailed))
	assert.Len(t, fx.userRepo.users, 1)
}

func TestAuthService_Register_ConcurrentDuplicateUsername(t *testing.T) {
	fx := createTestAuthService(t)

	// Two registrations race for the same handle: exactly one wins, the
	// loser gets the registration failure, and one record exists after.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- fx.service.Register(context.Background(), &usecase.RegisterInput{
				Username: "alice",
				Password: "hunter2!",
			})
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++

			continue
		}
		assert.True(t, errors.Is(err, domainerrors.ErrRegistrationFailed))
		failed++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Len(t, fx.userRepo.users, 1)
}

func TestAuthService_Register_InvalidIDRejected(t *testing.T) {
	fx := createTestAuthService(t)

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		ID:       "not-a-uuid",
		Username: "alice",
		Password: "hunter2!",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Empty(t, fx.userRepo.users)
}

// --- Login ---

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "hunter2!",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)

	// The refresh token must be in the registry immediately after login.
	exists, err := fx.tokenRepo.Exists(context.Background(), hashToken(output.RefreshToken))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAuthService_Login_UniformInvalidCredentials(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	// Wrong password and unknown username fail with the same error so a
	// caller cannot tell which field was wrong.
	_, wrongPassErr := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "wrong-password",
	})
	_, noUserErr := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "nobody",
		Password: "hunter2!",
	})

	assert.True(t, errors.Is(wrongPassErr, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(noUserErr, domainerrors.ErrInvalidCredentials))
	assert.Empty(t, fx.tokenRepo.tokens)
}

// --- Refresh ---

func TestAuthService_Refresh_Success(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	output, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{Token: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)

	// The refresh token is not rotated: the original stays valid.
	exists, err := fx.tokenRepo.Exists(context.Background(), hashToken(login.RefreshToken))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAuthService_Refresh_MissingTokenForbidden(t *testing.T) {
	fx := createTestAuthService(t)

	output, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{Token: ""})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshForbidden))
	assert.Nil(t, output)
}

func TestAuthService_Refresh_NilInputForbidden(t *testing.T) {
	fx := createTestAuthService(t)

	// An empty request body binds to a nil input; the exchange must reject
	// it like any other absent token instead of panicking.
	output, err := fx.service.Refresh(context.Background(), nil)

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshForbidden))
	assert.Nil(t, output)
}

func TestAuthService_Refresh_UnregisteredTokenForbidden(t *testing.T) {
	fx := createTestAuthService(t)

	// Forge a structurally valid refresh token with the correct secret but
	// never record it: the registry, not the signature, decides membership.
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"
	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	_, forged, err := tokenService.GenerateTokenPair("alice")
	require.NoError(t, err)

	output, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{Token: forged})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshForbidden))
	assert.Nil(t, output)
}

func TestAuthService_Refresh_RegisteredButUnverifiableTokenForbidden(t *testing.T) {
	fx := createTestAuthService(t)

	// A registry row alone is not enough: the token's own signature check
	// still has to pass.
	garbage := "not-a-real-jwt"
	err := fx.tokenRepo.Record(context.Background(), &entity.RefreshToken{
		TokenHash: hashToken(garbage),
		Username:  "alice",
	})
	require.NoError(t, err)

	output, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{Token: garbage})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshForbidden))
	assert.Nil(t, output)
}

// --- Logout ---

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	err = fx.service.Logout(context.Background(), &usecase.LogoutInput{Token: login.RefreshToken})
	require.NoError(t, err)

	// The revoked token must be rejected even though its signature and
	// expiry would still validate.
	_, err = fx.service.Refresh(context.Background(), &usecase.RefreshInput{Token: login.RefreshToken})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshForbidden))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(context.Background(), &usecase.LogoutInput{Token: login.RefreshToken}))

	// A second logout of the same token still reports success.
	assert.NoError(t, fx.service.Logout(context.Background(), &usecase.LogoutInput{Token: login.RefreshToken}))

	// So does logging out a token that never existed.
	assert.NoError(t, fx.service.Logout(context.Background(), &usecase.LogoutInput{Token: "never-issued"}))
}

func TestAuthService_Logout_NilInputSucceeds(t *testing.T) {
	fx := createTestAuthService(t)
	registerTestUser(t, fx, "alice", "hunter2!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Username: "alice",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	// An empty request body binds to a nil input; logout stays a success
	// and leaves other sessions untouched.
	require.NoError(t, fx.service.Logout(context.Background(), nil))

	exists, err := fx.tokenRepo.Exists(context.Background(), hashToken(login.RefreshToken))
	require.NoError(t, err)
	assert.True(t, exists)
}
