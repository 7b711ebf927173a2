package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Patient-identifying fields (name, date of birth, record number) are
// encrypted before they reach the record store.

var ErrCiphertextTooShort = errors.New("ciphertext too short")

type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type service struct {
	gcm cipher.AEAD
}

// NewService builds an AES-256-GCM encryption service. The key comes from
// the ENCRYPTION_KEY environment variable (64 hex characters); when unset
// a random ephemeral key is generated, which is only useful for tests and
// one-shot parse runs.
func NewService() (Service, error) {
	key, err := loadKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &service{gcm: gcm}, nil
}

func (s *service) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *service) Decrypt(encodedCiphertext string) (string, error) {
	if encodedCiphertext == "" {
		return "", nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encodedCiphertext)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < s.gcm.NonceSize() {
		return "", ErrCiphertextTooShort
	}

	nonce := ciphertext[:s.gcm.NonceSize()]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext[s.gcm.NonceSize():], nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func loadKey() ([]byte, error) {
	envKey := os.Getenv("ENCRYPTION_KEY")
	if envKey == "" {
		key := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
		return key, nil
	}

	key, err := hex.DecodeString(envKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be a valid hex string: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes (64 hex characters) for AES-256")
	}
	return key, nil
}
