package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sadsod/storefront/internal/domain/identity"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// AuthService handles admin authentication
type AuthService struct {
	userRepo   identity.AdminUserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist may be nil,
// in which case logout only ends the session client-side.
func NewAuthService(
	userRepo identity.AdminUserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login verifies the admin's credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Admin not found during login", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record admin login", zap.Error(err))
	}

	s.logger.Info("Admin logged in", zap.String("admin_id", user.ID.String()))
	return &LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Admin: AdminInfo{
			ID:       user.ID,
			Username: user.Username,
		},
	}, nil
}

// Logout revokes the token identified by jti for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, jti, remaining); err != nil {
		return err
	}
	s.logger.Info("Admin token revoked", zap.String("jti", jti))
	return nil
}

// EnsureAdmin creates the first admin account when none exists.
// Returns true when an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := identity.NewAdminUser(username, password)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Admin account created", zap.String("username", user.Username))
	return true, nil
}
