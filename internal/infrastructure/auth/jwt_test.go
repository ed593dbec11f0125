package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "sadsod-test",
	})
}

func TestNewJWTService(t *testing.T) {
	svc := newTestJWTService()

	assert.Equal(t, []byte("test-secret-key-at-least-32-chars"), svc.secret)
	assert.Equal(t, 15*time.Minute, svc.AccessTokenExpiration())
	assert.Equal(t, "sadsod-test", svc.issuer)
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	adminID := uuid.New()

	token, err := svc.GenerateAccessToken(adminID, "admin")
	require.NoError(t, err)

	assert.NotEmpty(t, token.Token)
	assert.NotEmpty(t, token.TokenID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, adminID.String(), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, token.TokenID, claims.ID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	parsed, err := claims.GetAdminUUID()
	require.NoError(t, err)
	assert.Equal(t, adminID, parsed)
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
}

func TestGenerateAccessToken_UniqueIDs(t *testing.T) {
	svc := newTestJWTService()
	adminID := uuid.New()

	first, err := svc.GenerateAccessToken(adminID, "admin")
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken(adminID, "admin")
	require.NoError(t, err)

	assert.NotEqual(t, first.TokenID, second.TokenID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-32-characters!",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "sadsod-test",
	})
	_, err = other.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "someone-else",
	})
	_, err = other.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	svc := newTestJWTService()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestValidateAccessToken_TamperedPayload(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	parts := strings.Split(token.Token, ".")
	require.Len(t, parts, 3)
	parts[1] = parts[1] + "x"

	_, err = svc.ValidateAccessToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestValidateAccessToken_MissingAdminID(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sadsod-test",
			Audience:  jwt.ClaimStrings{"sadsod-test"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TokenType: TokenTypeAccess,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrMissingAdminID)
}

func TestValidateAccessToken_WrongTokenType(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sadsod-test",
			Audience:  jwt.ClaimStrings{"sadsod-test"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		AdminID:   uuid.NewString(),
		TokenType: "refresh",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).GetRemainingTTL())

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	assert.Zero(t, past.GetRemainingTTL())
}
