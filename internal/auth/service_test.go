package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/sweetshop-backend/internal/users"
	pkgAuth "github.com/angelmondragon/sweetshop-backend/pkg/auth"
	"github.com/angelmondragon/sweetshop-backend/pkg/config"
	"github.com/angelmondragon/sweetshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/sweetshop-backend/pkg/db/models"
	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sweetshop-backend/pkg/errors"
	"github.com/angelmondragon/sweetshop-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "sweetshop", ExpirationMinutes: 60}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

func newTestService(t *testing.T) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t).DB())
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc, repo
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
	if msg != "" {
		assert.Equal(t, msg, typed.Message())
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWTConfig()})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{UserRepo: &stubUserRepository{}})
	assert.Error(t, err)
}

func TestRegisterIssuesUserToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Username: "ada", Email: "  Ada@Example.com ", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, enums.RoleUser, resp.User.Role)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, enums.RoleUser, claims.Role)

	stored, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	ok, err := security.VerifyPassword("pw", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterTokensAreDistinct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Username: "a", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterRequest{Username: "b", Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.NotEqual(t, first.User.ID, second.User.ID)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []RegisterRequest{
		{Email: "a@example.com", Password: "pw"},
		{Username: "a", Password: "pw"},
		{Username: "a", Email: "a@example.com"},
		{Username: "   ", Email: "a@example.com", Password: "pw"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeValidation, "All fields required")
	}
}

func TestRegisterRejectsDuplicateEmailOrUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "someone", Email: "ADA@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeAlreadyExists, "User already exists")

	_, err = svc.Register(ctx, RegisterRequest{Username: "ada", Email: "new@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeAlreadyExists, "User already exists")
}

func TestRegisterMapsRacingUniqueViolation(t *testing.T) {
	stub := &stubUserRepository{createErr: errors.New("UNIQUE constraint failed: users.email")}
	svc, err := NewService(ServiceParams{UserRepo: stub, JWTConfig: testJWTConfig(), PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeAlreadyExists, "User already exists")
}

func TestLoginSucceedsWithRegisteredCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "Ada@Example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "pw"})

	requireCode(t, wrongPassword, pkgerrors.CodeUnauthorized, "Invalid credentials")
	requireCode(t, unknownEmail, pkgerrors.CodeUnauthorized, "Invalid credentials")
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com"})
	requireCode(t, err, pkgerrors.CodeValidation, "Email and password required")

	_, err = svc.Login(context.Background(), LoginRequest{Password: "pw"})
	requireCode(t, err, pkgerrors.CodeValidation, "Email and password required")
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	repo := users.NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()
	seed := config.AdminSeedConfig{Username: "admin", Email: "Admin@SweetShop.com", Password: "admin123"}

	created, err := SeedAdmin(ctx, repo, seed, testPasswordConfig(), nil)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(ctx, repo, seed, testPasswordConfig(), nil)
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := repo.FindByEmail(ctx, "admin@sweetshop.com")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleAdmin, admin.Role)

	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWTConfig(), PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "admin@sweetshop.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleAdmin, resp.User.Role)
}

type stubUserRepository struct {
	createErr error
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return dto.ToModel(), nil
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	return false, nil
}
