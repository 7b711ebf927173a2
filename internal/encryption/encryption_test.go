package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := NewService()
	assert.NoError(t, err)

	ciphertext, err := svc.Encrypt("John Q. Public")
	assert.NoError(t, err)
	assert.NotEqual(t, "John Q. Public", ciphertext)

	plaintext, err := svc.Decrypt(ciphertext)
	assert.NoError(t, err)
	assert.Equal(t, "John Q. Public", plaintext)
}

func TestEncryptEmptyStringPassesThrough(t *testing.T) {
	svc, err := NewService()
	assert.NoError(t, err)

	ciphertext, err := svc.Encrypt("")
	assert.NoError(t, err)
	assert.Equal(t, "", ciphertext)

	plaintext, err := svc.Decrypt("")
	assert.NoError(t, err)
	assert.Equal(t, "", plaintext)
}

func TestDecryptGarbageFails(t *testing.T) {
	svc, err := NewService()
	assert.NoError(t, err)

	_, err = svc.Decrypt("AA==")
	assert.Error(t, err)
}
