package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

type stubUserRepo struct {
	user            *models.User
	lastLoginCalled bool
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return r.user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.user, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error {
	r.lastLoginCalled = true
	return nil
}

func newAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "navmenu-api",
	})
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		FullName:     "Admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Language:     "en",
		Active:       true,
	}
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	repo := &stubUserRepo{user: testUser(t, "secret123")}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
	assert.True(t, repo.lastLoginCalled)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "en", claims.Language)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthService(&stubUserRepo{user: testUser(t, "secret123")})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newAuthService(&stubUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := testUser(t, "secret123")
	user.Active = false
	svc := newAuthService(&stubUserRepo{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&stubUserRepo{})

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := NewAuthService(&stubUserRepo{}, nil, zap.NewNop(), AuthConfig{Secret: "other-secret", Expiration: time.Hour})
	repo := &stubUserRepo{user: testUser(t, "secret123")}
	issuer := newAuthService(repo)
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
