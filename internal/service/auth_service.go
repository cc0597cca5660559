package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce_api/internal/logger"
	"ecommerce_api/internal/model"
	"ecommerce_api/internal/repository"
	"ecommerce_api/internal/utils"

	"github.com/google/uuid"
)

// SignupInput carries the validated signup fields.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User         model.UserProfile `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd model.UserUpdate) (*model.UserProfile, error)
}

type authService struct {
	store      repository.Store
	jwtUtil    *utils.JWTUtil
	hasher     *utils.PasswordHasher
	log        *logger.Logger
	adminEmail string
	now        func() time.Time
}

// NewAuthService creates a new AuthService. A signup whose email equals
// adminEmail is given the admin role.
func NewAuthService(store repository.Store, jwtUtil *utils.JWTUtil, hasher *utils.PasswordHasher, log *logger.Logger, adminEmail string) AuthService {
	return &authService{
		store:      store,
		jwtUtil:    jwtUtil,
		hasher:     hasher,
		log:        log,
		adminEmail: NormalizeEmail(adminEmail),
		now:        time.Now,
	}
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates the user, its empty cart and its first refresh token in one transaction.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	existingUser, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	userRole := model.RoleCustomer
	if s.adminEmail != "" && email == s.adminEmail {
		userRole = model.RoleAdmin
		s.log.InfoContext(ctx, "registering user as admin via ADMIN_EMAIL", "email", email)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         userRole,
		IsActive:     true,
	}

	var access, refresh string
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUserAlreadyExists
			}
			return err
		}
		if _, err := tx.Carts().Create(ctx, user.ID); err != nil {
			return err
		}
		var err error
		access, refresh, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		s.log.ErrorContext(ctx, "signup failed", "email", email, "error", err)
		return nil, fmt.Errorf("failed to sign up user: %w", err)
	}

	s.log.InfoContext(ctx, "new user registered", "user_id", user.ID, "email", user.Email)
	return &AuthResult{User: user.Profile(), AccessToken: access, RefreshToken: refresh}, nil
}

// Login authenticates a user and issues a fresh token pair.
// Unknown email and wrong password share one message; a deactivated account is reported explicitly.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.Users().FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		// Sessions issued before deactivation stop refreshing.
		if n, err := s.store.RefreshTokens().DeleteByUserID(ctx, user.ID); err != nil {
			s.log.WarnContext(ctx, "failed to purge refresh tokens of deactivated user", "user_id", user.ID, "error", err)
		} else if n > 0 {
			s.log.InfoContext(ctx, "purged refresh tokens of deactivated user", "user_id", user.ID, "count", n)
		}
		return nil, ErrAccountDeactivated
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(ctx, s.store, user)
	if err != nil {
		s.log.ErrorContext(ctx, "login token issue failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user.Profile(), AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshAccessToken exchanges a stored, unexpired refresh token for a new
// access token. The refresh token itself is not rotated. A token found past
// its stored expiry is deleted before failing.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if _, err := s.jwtUtil.ValidateRefreshToken(refreshToken); err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return "", ErrRefreshTokenExpired
		}
		return "", ErrInvalidRefreshToken
	}

	tokens := s.store.RefreshTokens()
	stored, err := tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == nil {
		return "", ErrInvalidRefreshToken
	}

	if stored.Expired(s.now()) {
		if err := tokens.DeleteByID(ctx, stored.ID); err != nil {
			return "", fmt.Errorf("failed to delete expired refresh token: %w", err)
		}
		return "", ErrRefreshTokenExpired
	}

	accessToken, err := s.jwtUtil.GenerateAccessToken(stored.User.ID, stored.User.Email, stored.User.Role)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// Logout forgets the refresh token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	deleted, err := s.store.RefreshTokens().DeleteByToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.log.InfoContext(ctx, "user logged out", "tokens_removed", deleted)
	return nil
}

// GetProfile returns the public projection of a user.
func (s *authService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile writes whichever fields are set. There is no existence check
// before the write; a missing user surfaces as a storage error.
func (s *authService) UpdateProfile(ctx context.Context, userID string, upd model.UserUpdate) (*model.UserProfile, error) {
	if upd.Empty() {
		return nil, ErrNoProfileFields
	}

	user, err := s.store.Users().Update(ctx, userID, upd)
	if err != nil {
		s.log.ErrorContext(ctx, "update profile failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.log.InfoContext(ctx, "user profile updated", "user_id", user.ID)
	profile := user.Profile()
	return &profile, nil
}

// issueTokens signs an access/refresh pair and persists the refresh token
// with the same lifetime as its signed expiry.
func (s *authService) issueTokens(ctx context.Context, store repository.Store, user *model.User) (string, string, error) {
	access, err := s.jwtUtil.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}

	refresh, err := s.jwtUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	stored := &model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.jwtUtil.RefreshTTL()),
	}
	if err := store.RefreshTokens().Create(ctx, stored); err != nil {
		return "", "", fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return access, refresh, nil
}
