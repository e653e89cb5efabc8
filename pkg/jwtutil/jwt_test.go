package jwtutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/pkg/config"
	"inventory-service/pkg/jwtutil"
)

func initTestConfig(expiration time.Duration) {
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:     "jwt-test-key",
		ExpirationTime: expiration,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	initTestConfig(time.Hour)

	companyID := uint(42)
	token, err := jwtutil.GenerateToken("owner@example.com", 7, &companyID, "Romashka LLC", true)
	require.NoError(t, err)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.EqualValues(t, 7, claims.UserID)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, companyID, *claims.CompanyID)
	assert.Equal(t, "Romashka LLC", claims.CompanyName)
	assert.True(t, claims.IsOwner)
}

func TestTokenWithoutCompany(t *testing.T) {
	initTestConfig(time.Hour)

	token, err := jwtutil.GenerateToken("new@example.com", 9, nil, "", false)
	require.NoError(t, err)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.CompanyID)
	assert.False(t, claims.IsOwner)
}

func TestTamperedTokenRejected(t *testing.T) {
	initTestConfig(time.Hour)

	token, err := jwtutil.GenerateToken("user@example.com", 1, nil, "", false)
	require.NoError(t, err)

	_, err = jwtutil.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	initTestConfig(-time.Minute)

	token, err := jwtutil.GenerateToken("user@example.com", 1, nil, "", false)
	require.NoError(t, err)

	_, err = jwtutil.ValidateToken(token)
	assert.Error(t, err)
}
