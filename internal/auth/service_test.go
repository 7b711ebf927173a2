package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/config"
)

// Compile-time check that the mock satisfies the audit contract.
var _ audit.Service = (*mockAudit)(nil)

type mockAudit struct {
	events []*audit.Event
}

func (m *mockAudit) LogEvent(ctx context.Context, event *audit.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockAudit) QueryEvents(ctx context.Context, filters map[string]interface{}, from, size int) ([]audit.Event, error) {
	return nil, nil
}

func testConfig(t *testing.T) config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	return config.AuthConfig{
		JWTSecret:    "test-secret",
		TokenExpiry:  time.Hour,
		Username:     "operator",
		PasswordHash: string(hash),
	}
}

func TestLoginAndValidate(t *testing.T) {
	auditSvc := &mockAudit{}
	svc := NewService(testConfig(t), auditSvc)

	token, err := svc.Login(context.Background(), "operator", "correct horse")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)

	assert.Len(t, auditSvc.events, 1)
	assert.Equal(t, "success", auditSvc.events[0].Status)
}

func TestLoginWrongPassword(t *testing.T) {
	auditSvc := &mockAudit{}
	svc := NewService(testConfig(t), auditSvc)

	_, err := svc.Login(context.Background(), "operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Len(t, auditSvc.events, 1)
	assert.Equal(t, "failure", auditSvc.events[0].Status)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := NewService(testConfig(t), &mockAudit{})

	token, err := svc.Login(context.Background(), "operator", "correct horse")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginUnconfigured(t *testing.T) {
	svc := NewService(config.AuthConfig{}, &mockAudit{})

	_, err := svc.Login(context.Background(), "anyone", "anything")
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
}
