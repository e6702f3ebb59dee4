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
)

// LedgerService posts compensating rows against finalized orders. Posted
// rows are never changed.
type LedgerService struct {
	ledgerRepo   repository.LedgerRepository
	checkoutRepo repository.CheckoutRepository
	audit        AuditSink
	log          *logger.Logger
	now          func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	checkoutRepo repository.CheckoutRepository,
	audit AuditSink,
	log *logger.Logger,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:   ledgerRepo,
		checkoutRepo: checkoutRepo,
		audit:        audit,
		log:          log.WithComponent("ledger"),
		now:          time.Now,
	}
}

// ListByOrder returns every row posted for an order, reversals included
func (s *LedgerService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.LedgerEntry, error) {
	rows, err := s.ledgerRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load ledger", err)
	}
	return rows, nil
}

// List returns ledger rows matching params, newest first
func (s *LedgerService) List(ctx context.Context, params *repository.LedgerFilterParams) ([]entity.LedgerEntry, int64, error) {
	rows, total, err := s.ledgerRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.NewPersistenceError("Failed to list ledger", err)
	}
	return rows, total, nil
}

// UnpostBeneficiary reverses one senior/PWD row with a negative row that
// references it. A row can be unposted once.
func (s *LedgerService) UnpostBeneficiary(ctx context.Context, manager *Actor, rowID uuid.UUID, reason string) (*entity.LedgerEntry, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewFieldError("reason", "reason is required")
	}

	reversal, err := s.ledgerRepo.AppendReversal(ctx, rowID, func(original *entity.LedgerEntry) (*entity.LedgerEntry, error) {
		if original.IsReversal() {
			return nil, apperror.NewStateError("Reversal rows cannot be unposted")
		}
		if original.EntryType != enum.LedgerEntrySeniorPWD {
			return nil, apperror.NewStateError("Only senior/PWD rows can be unposted")
		}
		r := original.Reverse(manager.ID, reason, entity.AccountSeniorPWDUnpost, s.now())
		return &r, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Action:     "unpost_beneficiary",
		Actor:      manager.ID,
		ApprovedBy: manager.ID,
		Mode:       reversal.Mode,
		OrderID:    reversal.OrderID,
		Amount:     reversal.Debit.Abs(),
		Reason:     reason,
	})
	return reversal, nil
}

// VoidOrder cancels a finalized order by reversing all of its rows
func (s *LedgerService) VoidOrder(ctx context.Context, actor Actor, manager *Actor, orderID uuid.UUID, reason string) (*entity.Order, error) {
	return s.compensate(ctx, actor, manager, orderID, reason, enum.OrderStatusCancelled)
}

// RefundOrder marks a finalized order returned by reversing all of its rows
func (s *LedgerService) RefundOrder(ctx context.Context, actor Actor, manager *Actor, orderID uuid.UUID, reason string) (*entity.Order, error) {
	return s.compensate(ctx, actor, manager, orderID, reason, enum.OrderStatusReturned)
}

func (s *LedgerService) compensate(ctx context.Context, actor Actor, manager *Actor, orderID uuid.UUID, reason string, status enum.OrderStatus) (*entity.Order, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewFieldError("reason", "reason is required")
	}

	salesAccount := entity.AccountVoidedSales
	action := "void_order"
	if status == enum.OrderStatusReturned {
		salesAccount = entity.AccountSalesReturns
		action = "refund_order"
	}
	at := s.now()

	order, err := s.checkoutRepo.Compensate(ctx, orderID, func(order *entity.Order, posted []entity.LedgerEntry) (*repository.Compensation, error) {
		if order.Status != enum.OrderStatusComplete {
			return nil, apperror.NewStateError("Order is already " + order.Status.String())
		}
		reversed := make(map[uuid.UUID]bool, len(posted))
		for i := range posted {
			if posted[i].IsReversal() {
				reversed[*posted[i].ReversesID] = true
			}
		}

		comp := &repository.Compensation{Status: status}
		for i := range posted {
			row := &posted[i]
			if row.IsReversal() || reversed[row.ID] {
				continue
			}
			account := ""
			if row.EntryType == enum.LedgerEntryItem && row.AccountCode == entity.AccountSales {
				account = salesAccount
			}
			comp.Reversals = append(comp.Reversals, row.Reverse(manager.ID, reason, account, at))
		}
		return comp, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Action:     action,
		Actor:      actor.ID,
		ApprovedBy: manager.ID,
		Mode:       order.Mode,
		OrderID:    order.ID,
		Amount:     order.AmountDue,
		Reason:     reason,
	})
	s.log.Info("order compensated", "order_id", order.ID.String(), "invoice_no", order.InvoiceNo, "status", order.Status.String())
	return order, nil
}
