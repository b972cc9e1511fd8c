package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "socialsight", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", time.Hour)
	assert.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", -time.Minute)
	assert.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestStateTokenRoundTrip(t *testing.T) {
	token, err := GenerateStateToken(testSecret, "7", "instagram")
	assert.NoError(t, err)

	claims, err := ValidateStateToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "instagram", claims.Platform)
}

func TestStateTokenRejectsWrongSecret(t *testing.T) {
	state, err := GenerateStateToken(testSecret, "7", "twitter")
	assert.NoError(t, err)

	_, err = ValidateStateToken("other-secret", state)
	assert.Error(t, err)
}
