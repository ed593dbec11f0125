package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/sadsod/storefront/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber       = regexp.MustCompile(`[0-9]`)
)

// AdminUser is a back-office account allowed to manage the store
type AdminUser struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	LastLoginAt  *time.Time
}

// NewAdminUser creates an admin with a bcrypt-hashed password
func NewAdminUser(username, password string) (*AdminUser, error) {
	return newAdminUser(username, password, bcryptCost)
}

func newAdminUser(username, password string, cost int) (*AdminUser, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	return &AdminUser{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: string(hash),
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *AdminUser) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin stamps the last successful login time
func (u *AdminUser) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.Touch()
}

// AdminUserRepository defines the interface for admin account persistence
type AdminUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, user *AdminUser) error
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 64 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 64 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores bytes past 72
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}
