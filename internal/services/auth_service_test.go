package services

import (
	"context"
	"testing"

	"tripsalama/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", testLogger())
	return svc, users
}

func registerRequest(role models.UserRole, email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Amina",
		LastName:  "Benali",
		Email:     email,
		Password:  "correct-horse",
		Role:      role,
	}
}

func TestRegisterPassengerIsImmediatelyActive(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)
	assert.True(t, resp.User.IsVerified)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEqual(t, "correct-horse", resp.User.Password, "password must be stored hashed")
}

func TestRegisterDriverStartsInactive(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(models.UserRoleDriver, "driver@example.com"))
	require.NoError(t, err)
	assert.False(t, resp.User.IsVerified)
	assert.False(t, resp.User.IsActive)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerRequest(models.UserRoleAdmin, "admin@example.com"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	// Email lookup is case insensitive.
	_, err = svc.Register(ctx, registerRequest(models.UserRolePassenger, "Amina@Example.com"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	req := registerRequest(models.UserRolePassenger, "short@example.com")
	req.Password = "short"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "amina@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginHidesWhichCredentialFailed(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	_, wrongErr := svc.Login(ctx, &LoginRequest{Email: "amina@example.com", Password: "wrong"})

	assert.ErrorIs(t, unknownErr, ErrForbidden)
	assert.ErrorIs(t, wrongErr, ErrForbidden)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	// Freshly registered drivers are inactive until the verification gate.
	_, err := svc.Register(ctx, registerRequest(models.UserRoleDriver, "driver@example.com"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "driver@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRefreshTokens(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	pair, err := svc.RefreshTokens(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// A deactivated account cannot refresh.
	require.NoError(t, users.SetActive(ctx, resp.User.ID, false))
	_, err = svc.RefreshTokens(ctx, resp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RefreshTokens(ctx, "garbage")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProfileStripsProtectedFields(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, resp.User.ID, map[string]interface{}{
		"first_name": "Salma",
		"role":       "admin",
		"is_active":  false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Salma", updated.FirstName)
	assert.Equal(t, models.UserRolePassenger, updated.Role)
	assert.True(t, updated.IsActive)

	// Nothing left after stripping protected fields.
	_, err = svc.UpdateProfile(ctx, resp.User.ID, map[string]interface{}{"role": "admin"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(models.UserRolePassenger, "amina@example.com"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, "wrong", "new-password-1")
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.ChangePassword(ctx, resp.User.ID, "correct-horse", "new-password-1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "amina@example.com", Password: "new-password-1"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, &LoginRequest{Email: "amina@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrForbidden)
}
