package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

// TokenTypeAccess is the only token type issued to admins
const TokenTypeAccess TokenType = "access"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingAdminID   = errors.New("missing admin_id in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims represents the admin session claims
type Claims struct {
	jwt.RegisteredClaims
	AdminID   string    `json:"admin_id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
}

// AccessToken is a signed admin token
type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// GenerateAccessToken signs an access token for the admin
func (s *JWTService) GenerateAccessToken(adminID uuid.UUID, username string) (*AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	jti := uuid.New().String()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   adminID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AdminID:   adminID.String(),
		Username:  username,
		TokenType: TokenTypeAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &AccessToken{
		Token:     signed,
		TokenID:   jti,
		ExpiresAt: expiresAt,
		TokenType: "Bearer",
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if claims.AdminID == "" {
		return nil, ErrMissingAdminID
	}
	return claims, nil
}

// AccessTokenExpiration returns the configured access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.expiration
}

// GetAdminUUID parses the admin id claim
func (c *Claims) GetAdminUUID() (uuid.UUID, error) {
	return uuid.Parse(c.AdminID)
}

// GetExpiresAtTime returns the expiry, or the zero time when unset
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GetRemainingTTL returns how long the token stays valid; never negative
func (c *Claims) GetRemainingTTL() time.Duration {
	exp := c.GetExpiresAtTime()
	if exp.IsZero() {
		return 0
	}
	ttl := time.Until(exp)
	if ttl < 0 {
		return 0
	}
	return ttl
}
