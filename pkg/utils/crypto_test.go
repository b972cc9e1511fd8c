package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt(t *testing.T) {
	encrypted, err := Encrypt([]byte("oauth-access-token"), testKey)
	assert.NoError(t, err)
	assert.NotEqual(t, "oauth-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, testKey)
	assert.NoError(t, err)
	assert.Equal(t, "oauth-access-token", decrypted)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, err := Encrypt([]byte("same input"), testKey)
	assert.NoError(t, err)
	b, err := Encrypt([]byte("same input"), testKey)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), testKey)
	assert.NoError(t, err)

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", testKey)
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", testKey) // valid base64, too short for a nonce
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeySize(t *testing.T) {
	_, err := Encrypt([]byte("data"), []byte("short-key"))
	assert.Error(t, err)
}
