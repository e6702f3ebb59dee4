package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(terminal string, ttl time.Duration) *JWTManager {
	return NewJWTManager(TokenConfig{Secret: "secret", TerminalID: terminal, AccessTTL: ttl, RefreshTTL: 2 * ttl})
}

func TestJWTManager_AccessToken(t *testing.T) {
	m := newTestManager("POS-01", time.Hour)
	op := Operator{
		ID:          uuid.New(),
		Username:    "ana",
		Name:        "Ana Cruz",
		Roles:       []string{"cashier"},
		Permissions: []string{"sell", "x-reading"},
	}

	token, err := m.GenerateAccessToken(op)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	id, err := claims.OperatorID()
	require.NoError(t, err)
	assert.Equal(t, op.ID, id)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "Ana Cruz", claims.Name)
	assert.Equal(t, []string{"cashier"}, claims.Roles)
	assert.Equal(t, []string{"sell", "x-reading"}, claims.Permissions)
	assert.False(t, claims.CanApprove)
	assert.Equal(t, "POS-01", claims.Terminal())

	other := NewJWTManager(TokenConfig{Secret: "another-secret", TerminalID: "POS-01", AccessTTL: time.Hour})
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)

	_, err = m.GenerateAccessToken(Operator{Username: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestJWTManager_TerminalBinding(t *testing.T) {
	op := Operator{ID: uuid.New(), Username: "ben", CanApprove: true}

	token, err := newTestManager("POS-01", time.Hour).GenerateAccessToken(op)
	require.NoError(t, err)

	_, err = newTestManager("POS-02", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)

	// with no terminal configured any terminal's token is accepted
	claims, err := newTestManager("", time.Hour).ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.CanApprove)
}

func TestJWTManager_TokenUse(t *testing.T) {
	m := newTestManager("POS-01", time.Hour)
	operatorID := uuid.New()

	access, err := m.GenerateAccessToken(Operator{ID: operatorID, Username: "ana"})
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(operatorID)
	require.NoError(t, err)

	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, operatorID, got)

	_, err = m.ValidateRefreshToken(access)
	assert.True(t, errors.Is(err, ErrWrongTokenUse))
	_, err = m.ValidateAccessToken(refresh)
	assert.True(t, errors.Is(err, ErrWrongTokenUse))

	_, err = m.ValidateRefreshToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager("", time.Hour)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken(Operator{ID: uuid.New(), Username: "ana"})
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(3 * time.Hour) }
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
	_, err = m.ValidateRefreshToken(refresh)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("manager-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "manager-pass", hash)
	assert.True(t, CheckPasswordHash("manager-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestFormatInvoiceNo(t *testing.T) {
	tests := []struct {
		training bool
		no       int64
		want     string
	}{
		{false, 1, "00000001"},
		{false, 12345678, "12345678"},
		{true, 42, "TRN-00000042"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatInvoiceNo(tt.training, tt.no))
	}
}
