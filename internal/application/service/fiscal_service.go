package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ZReportMailer delivers a closed day's Z reading
type ZReportMailer interface {
	SendZReport(reading *entity.FiscalReading) error
}

// FiscalService produces X and Z readings and maintains the fiscal counters
type FiscalService struct {
	fiscalRepo repository.FiscalRepository
	sessions   *SessionStore
	header     entity.BusinessHeader
	location   *time.Location
	mailer     ZReportMailer
	audit      AuditSink
	log        *logger.Logger
	now        func() time.Time
	readings   singleflight.Group
}

// NewFiscalService creates a new fiscal service. mailer may be nil.
func NewFiscalService(
	fiscalRepo repository.FiscalRepository,
	sessions *SessionStore,
	header entity.BusinessHeader,
	location *time.Location,
	mailer ZReportMailer,
	audit AuditSink,
	log *logger.Logger,
) *FiscalService {
	if location == nil {
		location = time.Local
	}
	return &FiscalService{
		fiscalRepo: fiscalRepo,
		sessions:   sessions,
		header:     header,
		location:   location,
		mailer:     mailer,
		audit:      audit,
		log:        log.WithComponent("fiscal"),
		now:        time.Now,
	}
}

// XReadingInput selects the period of an X reading. With a session the
// reading covers that shift, otherwise the open business day.
type XReadingInput struct {
	Mode         enum.Mode
	SessionID    *uuid.UUID
	DeclaredCash *decimal.Decimal
}

// XReading returns a read-only snapshot. It never changes a counter.
func (s *FiscalService) XReading(ctx context.Context, actor Actor, input *XReadingInput) (*entity.FiscalReading, error) {
	if !input.Mode.Valid() {
		return nil, apperror.NewFieldError("mode", "mode must be live or training")
	}
	if input.DeclaredCash != nil && input.DeclaredCash.IsNegative() {
		return nil, apperror.NewFieldError("declared_cash", "declared cash cannot be negative")
	}

	var sess *Session
	if input.SessionID != nil {
		var err error
		if actor.IsManager() {
			sess = s.sessions.Get(*input.SessionID)
			if sess == nil {
				err = apperror.NewNotFoundError("Session")
			}
		} else {
			sess, err = s.sessions.owned(*input.SessionID, actor)
		}
		if err != nil {
			return nil, err
		}
		if sess.Mode != input.Mode {
			return nil, apperror.NewFieldError("session_id", "session belongs to another mode")
		}
	}

	key := string(input.Mode) + "/day"
	if sess != nil {
		key = string(input.Mode) + "/" + sess.ID.String()
	}
	if input.DeclaredCash != nil {
		key += "/" + money.Format(*input.DeclaredCash)
	}
	// Callers share one flight, so it must outlive whichever caller started it
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.readings.Do(key, func() (interface{}, error) {
		return s.xReading(flightCtx, input, sess)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.FiscalReading).Clone(), nil
}

func (s *FiscalService) xReading(ctx context.Context, input *XReadingInput, sess *Session) (*entity.FiscalReading, error) {
	var shift *repository.ShiftFilter
	if sess != nil {
		shift = &repository.ShiftFilter{SessionID: &sess.ID, CashierID: &sess.CashierID, Since: sess.OpenedAt}
	}
	snap, err := s.fiscalRepo.Snapshot(ctx, input.Mode, shift)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to read fiscal state", err)
	}

	scope := readingScope{
		Type:         entity.ReadingX,
		Header:       s.header,
		State:        snap.State,
		Totals:       &snap.State.FiscalTotals,
		PeriodStart:  snap.State.DayOpenedAt,
		PeriodEnd:    snap.At,
		BusinessDate: snap.At.In(s.location).Format("2006-01-02"),
		DeclaredCash: input.DeclaredCash,
	}
	if sess != nil {
		scope.Totals = snap.Shift
		scope.PeriodStart = sess.OpenedAt
		scope.SessionID = &sess.ID
		scope.CashierName = sess.CashierName
		scope.OpeningFund = sess.OpeningFund
	}
	return buildReading(scope), nil
}

// ZReading closes the business day: the Z counter advances, the day's net
// sales roll into accumulated sales and running totals reset. A second Z
// reading for the same business date is rejected.
func (s *FiscalService) ZReading(ctx context.Context, manager *Actor, mode enum.Mode, declaredCash *decimal.Decimal) (*entity.ZReading, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, apperror.NewFieldError("mode", "mode must be live or training")
	}

	now := s.now()
	businessDate := now.In(s.location).Format("2006-01-02")

	z, err := s.fiscalRepo.CloseDay(ctx, mode, func(state *entity.FiscalState) (*entity.ZReading, error) {
		if state.LastZDate == businessDate {
			return nil, apperror.NewStateError("Z reading already generated for " + businessDate)
		}

		totals := state.FiscalTotals
		doc := buildReading(readingScope{
			Type:         entity.ReadingZ,
			Header:       s.header,
			State:        state,
			Totals:       &totals,
			PeriodStart:  state.DayOpenedAt,
			PeriodEnd:    now,
			BusinessDate: businessDate,
			DeclaredCash: declaredCash,
		})
		doc.ZCounter = state.ZCounter + 1

		state.ZCounter++
		state.AccumulatedSales = state.AccumulatedSales.Add(totals.NetSales())
		state.LastZDate = businessDate
		state.LastZAt = &now
		state.DayOpenedAt = now
		state.FiscalTotals = entity.FiscalTotals{Payments: entity.PaymentBreakdown{}}

		return &entity.ZReading{
			Mode:         mode,
			ZCounter:     state.ZCounter,
			BusinessDate: businessDate,
			Document:     doc,
			GeneratedBy:  manager.ID,
		}, nil
	})
	if err != nil {
		if !apperror.IsAppError(err) {
			err = apperror.NewPersistenceError("Failed to close the day", err)
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Action:     "z_reading",
		Actor:      manager.ID,
		ApprovedBy: manager.ID,
		Mode:       mode,
		Amount:     z.Document.NetSales,
	})
	s.log.Info("z reading generated", "mode", string(mode), "z_counter", z.ZCounter, "business_date", businessDate)

	if s.mailer != nil {
		if err := s.mailer.SendZReport(z.Document); err != nil {
			s.log.Error("failed to mail z reading", "error", err, "z_counter", z.ZCounter)
		}
	}
	return z, nil
}

// WithdrawalInput represents a cash pull-out request
type WithdrawalInput struct {
	Mode      enum.Mode
	SessionID *uuid.UUID
	Amount    decimal.Decimal
	Reason    string
}

// RecordWithdrawal records cash taken out of the drawer. A manager must approve it.
func (s *FiscalService) RecordWithdrawal(ctx context.Context, actor Actor, manager *Actor, input *WithdrawalInput) (*entity.CashWithdrawal, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	var fieldErrors []apperror.FieldError
	if !input.Mode.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "mode", Message: "mode must be live or training"})
	}
	if !input.Amount.IsPositive() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if strings.TrimSpace(input.Reason) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "reason", Message: "reason is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}
	if input.SessionID != nil {
		sess, err := s.sessions.owned(*input.SessionID, actor)
		if err != nil {
			return nil, err
		}
		if sess.Mode != input.Mode {
			return nil, apperror.NewFieldError("session_id", "session belongs to another mode")
		}
	}

	w := &entity.CashWithdrawal{
		Mode:       input.Mode,
		SessionID:  input.SessionID,
		Amount:     money.Round(input.Amount),
		Reason:     strings.TrimSpace(input.Reason),
		CashierID:  actor.ID,
		ApprovedBy: manager.ID,
	}
	if _, err := s.fiscalRepo.RecordWithdrawal(ctx, w); err != nil {
		if !apperror.IsAppError(err) {
			err = apperror.NewPersistenceError("Failed to record withdrawal", err)
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Action:     "cash_withdrawal",
		Actor:      actor.ID,
		ApprovedBy: manager.ID,
		Mode:       w.Mode,
		Amount:     w.Amount,
		Reason:     w.Reason,
	})
	return w, nil
}

// ResetAccumulated zeroes accumulated sales and advances the reset counter
func (s *FiscalService) ResetAccumulated(ctx context.Context, manager *Actor, mode enum.Mode, reason string) (*entity.FiscalState, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, apperror.NewFieldError("mode", "mode must be live or training")
	}

	var previous decimal.Decimal
	state, err := s.fiscalRepo.UpdateState(ctx, mode, func(state *entity.FiscalState) error {
		previous = state.AccumulatedSales
		state.ResetCounter++
		state.AccumulatedSales = decimal.Zero
		return nil
	})
	if err != nil {
		if !apperror.IsAppError(err) {
			err = apperror.NewPersistenceError("Failed to reset accumulated sales", err)
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Action:     "reset_accumulated",
		Actor:      manager.ID,
		ApprovedBy: manager.ID,
		Mode:       mode,
		Amount:     previous,
		Reason:     reason,
	})
	return state, nil
}

// Status loads the fiscal state of both modes
func (s *FiscalService) Status(ctx context.Context) ([]*entity.FiscalState, error) {
	modes := []enum.Mode{enum.ModeLive, enum.ModeTraining}
	states := make([]*entity.FiscalState, len(modes))

	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		i, mode := i, mode
		g.Go(func() error {
			state, err := s.fiscalRepo.GetState(gctx, mode)
			if err != nil {
				return apperror.NewPersistenceError("Failed to load fiscal state", err)
			}
			if state == nil {
				return apperror.NewNotFoundError("Fiscal state")
			}
			states[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

// ListZReadings lists a mode's Z readings, latest first
func (s *FiscalService) ListZReadings(ctx context.Context, mode enum.Mode, params *pagination.PaginationParams) ([]entity.ZReading, int64, error) {
	readings, total, err := s.fiscalRepo.ListZReadings(ctx, mode, params)
	if err != nil {
		return nil, 0, apperror.NewPersistenceError("Failed to list Z readings", err)
	}
	return readings, total, nil
}

// GetZReading returns a stored Z reading
func (s *FiscalService) GetZReading(ctx context.Context, id uuid.UUID) (*entity.ZReading, error) {
	z, err := s.fiscalRepo.GetZReading(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load Z reading", err)
	}
	if z == nil {
		return nil, apperror.NewNotFoundError("Z reading")
	}
	return z, nil
}
