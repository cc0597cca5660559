package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce_api/internal/logger"
	"ecommerce_api/internal/model"
	"ecommerce_api/internal/repository"
	"ecommerce_api/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret123"

func newTestAuthService(t *testing.T) (*authService, *memStore, *utils.JWTUtil) {
	t.Helper()
	store := newMemStore()
	jwtUtil := utils.NewJWTUtil(utils.JWTOptions{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	svc := NewAuthService(store, jwtUtil, utils.NewPasswordHasher(bcrypt.MinCost), logger.Nop(), "Boss@Example.com")
	return svc.(*authService), store, jwtUtil
}

func signupInput(email string) SignupInput {
	return SignupInput{Email: email, Password: testPassword, FirstName: "Jane", LastName: "Doe"}
}

func TestSignup_IssuesTokensForNewUser(t *testing.T) {
	svc, store, jwtUtil := newTestAuthService(t)
	ctx := context.Background()

	before := time.Now()
	res, err := svc.Signup(ctx, signupInput("Jane@Example.com"))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.NotEmpty(t, res.User.ID)

	claims, err := jwtUtil.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, res.User.Email, claims.Email)
	assert.Equal(t, res.User.Role, claims.Role)

	refreshClaims, err := jwtUtil.ValidateRefreshToken(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, refreshClaims.UserID)

	stored := store.token(res.RefreshToken)
	require.NotNil(t, stored)
	assert.Equal(t, res.User.ID, stored.UserID)
	assert.WithinDuration(t, before.Add(30*24*time.Hour), stored.ExpiresAt, 5*time.Second)
	assert.WithinDuration(t, refreshClaims.ExpiresAt.Time, stored.ExpiresAt, 2*time.Second)

	assert.Contains(t, store.carts, res.User.ID)

	user, err := store.Users().FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.True(t, user.IsActive)
}

func TestSignup_AdminEmailGetsAdminRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	res, err := svc.Signup(context.Background(), signupInput("boss@example.com"))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	for _, email := range []string{"jane@example.com", "JANE@example.COM", "  jane@example.com "} {
		_, err := svc.Signup(ctx, signupInput(email))
		assert.ErrorIs(t, err, ErrUserAlreadyExists, email)
		assert.Equal(t, KindConflict, KindOf(err))
	}
	assert.Equal(t, 1, store.userCount())
	assert.Equal(t, 1, store.tokenCount())
}

func TestSignup_StorageDuplicateIsConflict(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()

	// Simulates a concurrent signup that won the race after the existence check.
	racer := &model.User{ID: "racer", Email: "jane@example.com", IsActive: true}
	svc.store = &raceStore{memStore: store, onCreate: func() { _ = store.Users().Create(ctx, racer) }}

	_, err := svc.Signup(ctx, signupInput("jane@example.com"))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, 1, store.userCount())
	assert.Equal(t, 0, store.tokenCount())
}

func TestSignup_RollsBackWhenCartFails(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	store.cartErr = errors.New("carts unavailable")

	_, err := svc.Signup(context.Background(), signupInput("jane@example.com"))
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, 0, store.userCount())
	assert.Equal(t, 0, store.tokenCount())
	assert.Empty(t, store.carts)
}

func TestLogin(t *testing.T) {
	svc, store, jwtUtil := newTestAuthService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(ctx, "JANE@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, res.User.ID)
		assert.NotEqual(t, signed.RefreshToken, res.RefreshToken)

		claims, err := jwtUtil.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, claims.UserID)
		assert.NotNil(t, store.token(res.RefreshToken))
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, errUnknown := svc.Login(ctx, "nobody@example.com", testPassword)
		_, errWrong := svc.Login(ctx, "jane@example.com", "Wrong1234")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		assert.Equal(t, KindUnauthorized, KindOf(errWrong))
	})

	t.Run("deactivated account", func(t *testing.T) {
		other, err := svc.Signup(ctx, signupInput("john@example.com"))
		require.NoError(t, err)

		store.users[signed.User.ID].IsActive = false
		defer func() { store.users[signed.User.ID].IsActive = true }()

		res, err := svc.Login(ctx, "jane@example.com", testPassword)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrAccountDeactivated)
		assert.Equal(t, "Account is deactivated", err.Error())

		assert.Nil(t, store.token(signed.RefreshToken), "existing sessions are purged")
		assert.NotNil(t, store.token(other.RefreshToken))
		assert.Equal(t, 1, store.tokenCount())

		_, err = svc.RefreshAccessToken(ctx, signed.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	svc, store, jwtUtil := newTestAuthService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		access, err := svc.RefreshAccessToken(ctx, signed.RefreshToken)
		require.NoError(t, err)

		claims, err := jwtUtil.ValidateAccessToken(access)
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, claims.UserID)
		assert.Equal(t, signed.User.Email, claims.Email)
		assert.NotNil(t, store.token(signed.RefreshToken), "refresh token is not rotated")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.RefreshAccessToken(ctx, "not-a-jwt-at-all")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.RefreshAccessToken(ctx, signed.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("signed but not stored", func(t *testing.T) {
		orphan, err := jwtUtil.GenerateRefreshToken(signed.User.ID)
		require.NoError(t, err)

		_, err = svc.RefreshAccessToken(ctx, orphan)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("stored expiry passed", func(t *testing.T) {
		res, err := svc.Login(ctx, "jane@example.com", testPassword)
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err = svc.RefreshAccessToken(ctx, res.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		assert.Nil(t, store.token(res.RefreshToken))

		_, err = svc.RefreshAccessToken(ctx, res.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestLogout_IsIdempotent(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, signed.RefreshToken))
	assert.Nil(t, store.token(signed.RefreshToken))

	require.NoError(t, svc.Logout(ctx, signed.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued-token"))

	_, err = svc.RefreshAccessToken(ctx, signed.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, signed.User.ID)
	require.NoError(t, err)
	assert.Equal(t, signed.User, *profile)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, signupInput("jane@example.com"))
	require.NoError(t, err)

	t.Run("no fields", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, signed.User.ID, model.UserUpdate{})
		assert.ErrorIs(t, err, ErrNoProfileFields)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		phone := "+1 555 123 4567"
		profile, err := svc.UpdateProfile(ctx, signed.User.ID, model.UserUpdate{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Jane", profile.FirstName)
		assert.Equal(t, "Doe", profile.LastName)
		require.NotNil(t, profile.Phone)
		assert.Equal(t, phone, *profile.Phone)
		assert.Equal(t, signed.User.Email, profile.Email)
	})

	t.Run("missing user is a storage failure", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.UpdateProfile(ctx, "missing", model.UserUpdate{FirstName: &name})
		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
	})
}

// raceStore inserts a competing user right before the transactional create.
type raceStore struct {
	*memStore
	onCreate func()
}

func (s *raceStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	s.onCreate()
	return s.memStore.WithTx(ctx, fn)
}
