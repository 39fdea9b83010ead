package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	ErrUsernameTaken      = shared.NewDomainError("ALREADY_EXISTS", "A user with that username already exists")
	ErrEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "A user with that email already exists")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles accounts and token issuing
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist and events may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	events shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		events:     events,
		logger:     logger,
	}
}

// Register creates a regular (non-staff) account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetName(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	s.publish(ctx, user)

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login checks credentials and returns a token pair. Repeated failures lock
// the account for identity.LockDuration.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked() {
		s.logger.Warn("login attempt for locked account", zap.String("username", username))
		return nil, ErrAccountLocked
	}
	if !user.CanLogin() {
		return nil, ErrAccountInactive
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure()
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("failed to record login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("account locked after failed logins", zap.String("username", username))
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	})
	if err != nil {
		return nil, err
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the tokens are valid either way
		s.logger.Warn("failed to record login", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return toTokenResponse(pair), nil
}

// Refresh rotates a refresh token into a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.Refresh)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if s.revoked(ctx, claims.ID) {
		return nil, ErrTokenInvalid
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.CanLogin() {
		s.logger.Warn("token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, ErrAccountInactive
	}

	pair, err := s.jwtService.RefreshTokenPair(req.Refresh, user.Username, user.IsStaff)
	if err != nil {
		s.logger.Warn("token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	s.revoke(ctx, claims)

	return toTokenResponse(pair), nil
}

// Logout revokes the presented access token until it expires, and the
// refresh token when one is supplied
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, req LogoutRequest) error {
	if s.blacklist == nil {
		s.logger.Warn("logout without a token blacklist, tokens stay valid until expiry")
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, access.ID, access.GetRemainingTTL()); err != nil {
		return err
	}
	if req.Refresh != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(req.Refresh); err == nil && claims.UserID == access.UserID {
			s.revoke(ctx, claims)
		}
	}
	s.logger.Info("user logged out", zap.String("user_id", access.UserID))
	return nil
}

// Me returns the account of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateMe patches email and names of the authenticated user
func (s *AuthService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateMeRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), user.Email) {
		if err := s.ensureEmailFree(ctx, *req.Email); err != nil {
			return nil, err
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.FirstName != nil || req.LastName != nil {
		first, last := user.FirstName, user.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		if err := user.SetName(first, last); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(req.CurrentPassword) {
		return ErrInvalidCredentials
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user password changed", zap.String("user_id", userID.String()))
	return nil
}

// EnsureStaffUser creates a staff account when no staff user exists yet.
// It reports whether an account was created.
func (s *AuthService) EnsureStaffUser(ctx context.Context, username, email, password string) (bool, error) {
	count, err := s.userRepo.CountStaff(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := identity.NewStaffUser(username, email, password)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("bootstrapped staff user", zap.String("username", user.Username))
	return true, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func (s *AuthService) revoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil {
		return false
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("token blacklist lookup failed", zap.Error(err))
		return false
	}
	return revoked
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	events := user.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish user events", zap.Error(err))
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
