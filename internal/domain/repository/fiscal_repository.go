package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// ShiftFilter narrows an X reading to one cashier shift
type ShiftFilter struct {
	SessionID *uuid.UUID
	CashierID *uuid.UUID
	Since     time.Time
}

// Snapshot is a consistent read of the fiscal state. Shift is set only when
// a ShiftFilter was given.
type Snapshot struct {
	State *entity.FiscalState
	Shift *entity.FiscalTotals
	At    time.Time
}

// FiscalRepository defines the interface for fiscal counters, withdrawals and Z readings
type FiscalRepository interface {
	GetState(ctx context.Context, mode enum.Mode) (*entity.FiscalState, error)
	// Snapshot reads the state under a shared lock so it never observes a
	// half-applied finalize.
	Snapshot(ctx context.Context, mode enum.Mode, shift *ShiftFilter) (*Snapshot, error)
	// UpdateState runs fn against the exclusively locked state and saves it
	UpdateState(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) error) (*entity.FiscalState, error)
	// CloseDay runs fn against the locked state, stores the Z reading it
	// returns and saves the mutated state, atomically.
	CloseDay(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) (*entity.ZReading, error)) (*entity.ZReading, error)
	RecordWithdrawal(ctx context.Context, w *entity.CashWithdrawal) (*entity.FiscalState, error)
	ListZReadings(ctx context.Context, mode enum.Mode, params *pagination.PaginationParams) ([]entity.ZReading, int64, error)
	GetZReading(ctx context.Context, id uuid.UUID) (*entity.ZReading, error)
}
