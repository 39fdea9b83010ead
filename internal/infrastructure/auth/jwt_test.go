package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 5 * 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	}
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "alice",
		IsStaff:  true,
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})

	assert.Equal(t, []byte("test-secret"), svc.refresh.secret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, id)
}

func TestValidateAccessToken_Errors(t *testing.T) {
	shared := testJWTConfig()
	shared.RefreshSecret = shared.Secret

	expired := testJWTConfig()
	expired.AccessTokenExpiration = -time.Hour

	other := testJWTConfig()
	other.Secret = "a-completely-different-secret-key"

	tests := []struct {
		name     string
		issuer   config.JWTConfig
		verifier config.JWTConfig
		token    func(*TokenPair) string
		wantErr  error
	}{
		{"expired", expired, expired, func(p *TokenPair) string { return p.AccessToken }, ErrExpiredToken},
		{"garbage", testJWTConfig(), testJWTConfig(), func(*TokenPair) string { return "not-a-token" }, ErrInvalidToken},
		{"refresh token", shared, shared, func(p *TokenPair) string { return p.RefreshToken }, ErrInvalidTokenType},
		{"foreign secret", other, testJWTConfig(), func(p *TokenPair) string { return p.AccessToken }, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := NewJWTService(tt.issuer).GenerateTokenPair(newTestInput())
			require.NoError(t, err)

			_, err = NewJWTService(tt.verifier).ValidateAccessToken(tt.token(pair))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Zero(t, claims.RefreshCount)
	assert.False(t, claims.IsStaff)
}

func TestRefreshTokenPair_ReissuesWithCurrentStaffFlag(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	next, err := svc.RefreshTokenPair(pair.RefreshToken, "alice", false)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	access, err := svc.ValidateAccessToken(next.AccessToken)
	require.NoError(t, err)
	assert.False(t, access.IsStaff)

	refresh, err := svc.ValidateRefreshToken(next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, refresh.RefreshCount)
}

func TestRefreshTokenPair_MaxRefreshExceeded(t *testing.T) {
	cfg := testJWTConfig()
	cfg.MaxRefreshCount = 2
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)
	for range 2 {
		pair, err = svc.RefreshTokenPair(pair.RefreshToken, "alice", true)
		require.NoError(t, err)
	}

	_, err = svc.RefreshTokenPair(pair.RefreshToken, "alice", true)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestRefreshTokenPair_RejectsAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshSecret = cfg.Secret
	svc := NewJWTService(cfg)
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.AccessToken, "alice", true)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
	assert.Zero(t, (&Claims{}).GetRemainingTTL())
}
