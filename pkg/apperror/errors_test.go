package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantKind Kind
		wantCode int
	}{
		{"validation", NewFieldError("drink", "required"), KindValidation, http.StatusUnprocessableEntity},
		{"state", NewStateError("entry is discounted"), KindState, http.StatusConflict},
		{"insufficient tender", NewInsufficientTenderError("short by 10.00"), KindInsufficientTender, http.StatusPaymentRequired},
		{"allocation conflict", NewAllocationConflictError(errors.New("duplicate key")), KindAllocationConflict, http.StatusConflict},
		{"persistence", NewPersistenceError("write failed", errors.New("disk")), KindPersistence, http.StatusInternalServerError},
		{"not found", NewNotFoundError("Order"), KindNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("finalize: %w", tt.err)
			assert.True(t, IsKind(wrapped, tt.wantKind))
			assert.Equal(t, tt.wantCode, GetAppError(wrapped).Code)
		})
	}
}

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("ledger write failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")

	forbidden := fmt.Errorf("void: %w", NewForbiddenError("Manager authorization required"))
	assert.ErrorIs(t, forbidden, ErrManagerRequired)
	assert.False(t, errors.Is(forbidden, ErrNotFound))
}

func TestGetAppErrorFallsBackToInternal(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "boom", appErr.Message)
	assert.False(t, IsAppError(errors.New("boom")))
}
