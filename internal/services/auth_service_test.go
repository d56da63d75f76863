package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessTokenClaims(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: 15 * time.Minute,
	}
	svc := NewAuthService(nil, cfg, nil)

	user := &models.User{
		ID:    uuid.New(),
		Email: "taro@example.com",
		Role:  "admin",
	}

	raw, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "taro@example.com", claims["email"])
	assert.Equal(t, "admin", claims["role"])

	exp := int64(claims["exp"].(float64))
	assert.InDelta(t, time.Now().Add(15*time.Minute).Unix(), exp, 5)
}

func TestGenerateAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "right-secret", JWTAccessExpiry: time.Minute}
	svc := NewAuthService(nil, cfg, nil)

	raw, err := svc.generateAccessToken(&models.User{ID: uuid.New(), Role: "user"})
	require.NoError(t, err)

	_, err = jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestHashTokenDeterministic(t *testing.T) {
	a := hashToken("some-refresh-token")
	b := hashToken("some-refresh-token")
	c := hashToken("another-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex sha256
}

func TestUserToResponseRoleMapping(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Email: "a@example.com", Role: "admin"}
	user := &models.User{ID: uuid.New(), Email: "u@example.com", Role: "user", IsBlocked: true}

	assert.True(t, UserToResponse(admin).IsAdmin)

	resp := UserToResponse(user)
	assert.False(t, resp.IsAdmin)
	assert.True(t, resp.IsBlocked)
}
