package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-signing",
		AccessTokenExpiration: time.Hour,
		Issuer:                "loomline-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := newTestJWTService()
	actor := identity.NewActor(uuid.New(), identity.RoleSupplier)

	token, err := service.GenerateToken(actor)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := service.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID.String(), claims.UserID)
	assert.Equal(t, "supplier", claims.Role)
	assert.Equal(t, "loomline-test", claims.Issuer)

	parsed, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, parsed.UserID)
	assert.Equal(t, identity.RoleSupplier, parsed.Role)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service := newTestJWTService()
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "loomline-test",
	})

	token, err := service.GenerateToken(identity.NewActor(uuid.New(), identity.RoleBuyer))
	require.NoError(t, err)

	_, err = other.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-signing",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "loomline-test",
	})

	token, err := service.GenerateToken(identity.NewActor(uuid.New(), identity.RoleAdmin))
	require.NoError(t, err)

	_, err = service.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	service := newTestJWTService()

	_, err := service.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_Actor_UnknownRole(t *testing.T) {
	claims := &Claims{
		UserID: uuid.New().String(),
		Role:   "superuser",
	}

	_, err := claims.Actor()
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestClaims_Actor_BadUserID(t *testing.T) {
	claims := &Claims{
		UserID: "not-a-uuid",
		Role:   "buyer",
	}

	_, err := claims.Actor()
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
