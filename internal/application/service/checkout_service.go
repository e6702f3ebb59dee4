package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
)

// CheckoutService finalizes pending orders and serves finalized ones
type CheckoutService struct {
	sessions     *SessionStore
	checkoutRepo repository.CheckoutRepository
	orderRepo    repository.OrderRepository
	policy       DiscountPolicy
	log          *logger.Logger
	now          func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	sessions *SessionStore,
	checkoutRepo repository.CheckoutRepository,
	orderRepo repository.OrderRepository,
	policy DiscountPolicy,
	log *logger.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:     sessions,
		checkoutRepo: checkoutRepo,
		orderRepo:    orderRepo,
		policy:       policy,
		log:          log.WithComponent("checkout"),
		now:          time.Now,
	}
}

// Finalize allocates the invoice number, posts the ledger and advances the
// fiscal totals as one unit. On any error the session keeps its pending
// order unchanged and no number is consumed.
func (s *CheckoutService) Finalize(ctx context.Context, actor Actor, sessionID uuid.UUID) (*entity.Order, error) {
	var finalized *entity.Order
	_, err := s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order == nil {
			return apperror.NewStateError("No open order")
		}
		if err := st.Order.ValidateForFinalize(); err != nil {
			return err
		}

		order, err := s.snapshot(st)
		if err != nil {
			return err
		}

		finalized, err = s.checkoutRepo.Finalize(ctx, sess.Mode, func(invoiceNo int64) (*repository.FinalizeBatch, error) {
			order.InvoiceNo = invoiceNo
			rows := BuildLedgerRows(order, actor.ID, *order.FinalizedAt)
			if err := ValidateLedgerRows(rows); err != nil {
				return nil, err
			}
			return &repository.FinalizeBatch{Order: order, Ledger: rows}, nil
		})
		if err != nil {
			return err
		}

		st.Order = nil
		st.Discount = entity.NoDiscount{}
		st.Tender.Clear()
		return nil
	})
	if err != nil {
		if apperror.IsKind(err, apperror.KindPersistence) || apperror.IsKind(err, apperror.KindAllocationConflict) {
			s.log.Error("finalize failed", "error", err, "session_id", sessionID.String())
		}
		return nil, err
	}

	s.log.Info("order finalized",
		"order_id", finalized.ID.String(),
		"mode", string(finalized.Mode),
		"invoice_no", finalized.InvoiceNo,
		"amount_due", money.Format(finalized.AmountDue),
	)
	return finalized, nil
}

// snapshot freezes the pending order with its computed totals, tender and beneficiaries
func (s *CheckoutService) snapshot(st *sessionState) (*entity.Order, error) {
	order := st.Order.Clone()
	order.SortEntries()

	c := ComputeDiscount(order, st.Discount, s.policy)
	summary := st.Tender.Reconcile(c)
	if err := st.Tender.CheckAlternatives(summary.AmountDue); err != nil {
		return nil, err
	}
	if !summary.Sufficient {
		return nil, apperror.NewInsufficientTenderError(
			"Tendered " + money.Format(summary.Tendered) + " is below the amount due of " + money.Format(summary.AmountDue),
		)
	}
	c.ApplyTo(order)

	lines := st.Tender.Lines()
	if len(lines) == 0 {
		// Fully discounted orders still record a zero cash line
		lines = append(lines, entity.TenderLine{LineNo: 1, Kind: enum.TenderKindCash, PaymentType: entity.CashPaymentType})
	}
	order.Tenders = lines
	order.Tendered = summary.Tendered
	order.Change = summary.Change

	order.DiscountKind = st.Discount.Kind()
	switch d := st.Discount.(type) {
	case entity.Promo:
		order.DiscountCode = d.Code
		order.DiscountRate = d.Percent
	case entity.Coupon:
		order.DiscountCode = d.Code
	case entity.Other:
		order.DiscountRate = d.Percent
	case entity.SeniorOrPWD:
		order.Beneficiaries = make([]entity.DiscountBeneficiary, 0, len(d.Beneficiaries))
		for _, b := range d.Beneficiaries {
			if e := order.Entry(b.EntryNo); e != nil {
				b.Amount = money.Round(e.SubtotalOf(func(it entity.EntryItem) bool { return it.Kind != enum.ItemKindAddOn }))
			}
			order.Beneficiaries = append(order.Beneficiaries, b)
		}
	}

	now := s.now()
	order.Status = enum.OrderStatusComplete
	order.FinalizedAt = &now
	order.UpdatedAt = now
	return order, nil
}

// GetOrder returns a finalized order by ID
func (s *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load order", err)
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// GetOrderByInvoice returns a finalized order by mode and invoice number
func (s *CheckoutService) GetOrderByInvoice(ctx context.Context, mode enum.Mode, invoiceNo int64) (*entity.Order, error) {
	order, err := s.orderRepo.GetByInvoiceNo(ctx, mode, invoiceNo)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load order", err)
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists finalized orders, newest first
func (s *CheckoutService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.NewPersistenceError("Failed to list orders", err)
	}
	return orders, total, nil
}
