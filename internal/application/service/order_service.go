package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// OrderService handles the pending order of a cashier session: entries,
// discounts and tender
type OrderService struct {
	sessions    *SessionStore
	catalogRepo repository.CatalogRepository
	promoRepo   repository.PromoRepository
	license     *LicenseChecker
	audit       AuditSink
	policy      DiscountPolicy
	log         *logger.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	sessions *SessionStore,
	catalogRepo repository.CatalogRepository,
	promoRepo repository.PromoRepository,
	license *LicenseChecker,
	audit AuditSink,
	policy DiscountPolicy,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		sessions:    sessions,
		catalogRepo: catalogRepo,
		promoRepo:   promoRepo,
		license:     license,
		audit:       audit,
		policy:      policy,
		log:         log.WithComponent("order"),
		now:         time.Now,
	}
}

// OpenSessionInput represents the open session input
type OpenSessionInput struct {
	Mode        enum.Mode
	OpeningFund decimal.Decimal
}

// OpenSession starts a cashier shift
func (s *OrderService) OpenSession(ctx context.Context, actor Actor, input *OpenSessionInput) (*SessionSnapshot, error) {
	if !input.Mode.Valid() {
		return nil, apperror.NewFieldError("mode", "mode must be live or training")
	}
	if input.OpeningFund.IsNegative() {
		return nil, apperror.NewFieldError("opening_fund", "opening fund cannot be negative")
	}
	now := s.now()
	warning, err := s.license.Check(now)
	if err != nil {
		return nil, err
	}
	if s.sessions.OpenFor(actor.ID, input.Mode) != nil {
		return nil, apperror.NewStateError("Cashier already has an open session")
	}

	sess := &Session{
		ID:             uuid.New(),
		CashierID:      actor.ID,
		CashierName:    actor.Name,
		Mode:           input.Mode,
		OpeningFund:    money.Round(input.OpeningFund),
		OpenedAt:       now,
		LicenseWarning: warning,
		state:          sessionState{Discount: entity.NoDiscount{}},
	}
	s.sessions.Add(sess)
	s.log.Info("session opened", "session_id", sess.ID.String(), "cashier_id", actor.ID.String(), "mode", string(sess.Mode))
	return sess.Snapshot(s.policy), nil
}

// GetSession returns the session with its current totals
func (s *OrderService) GetSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*SessionSnapshot, error) {
	sess, err := s.sessions.owned(sessionID, actor)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(s.policy), nil
}

// CloseSession ends a shift. The pending order must be finalized or emptied first.
func (s *OrderService) CloseSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order != nil && len(st.Order.Entries) > 0 {
			return apperror.NewStateError("Finalize or void the open order before closing the session")
		}
		now := s.now()
		sess.ClosedAt = &now
		return nil
	})
}

// AddEntryInput represents one "add to order" action
type AddEntryInput struct {
	MenuItemID uuid.UUID
	DrinkID    *uuid.UUID
	AddOnID    *uuid.UUID
	Quantity   int
}

// AddEntry resolves catalog prices and adds the selection to the pending
// order, merging into an identical undiscounted entry when one exists
func (s *OrderService) AddEntry(ctx context.Context, actor Actor, sessionID uuid.UUID, input *AddEntryInput) (*SessionSnapshot, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewFieldError("quantity", "quantity must be at least 1")
	}

	refs := []struct {
		field string
		id    *uuid.UUID
		kind  enum.ItemKind
	}{
		{"menu_item_id", &input.MenuItemID, enum.ItemKindMenu},
		{"drink_id", input.DrinkID, enum.ItemKindDrink},
		{"add_on_id", input.AddOnID, enum.ItemKindAddOn},
	}
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		if ref.id != nil {
			ids = append(ids, *ref.id)
		}
	}

	// Batch fetch all referenced items in one query
	items, err := s.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load catalog items", err)
	}
	itemMap := make(map[uuid.UUID]*entity.CatalogItem, len(items))
	for i := range items {
		itemMap[items[i].ID] = &items[i]
	}

	candidate := entity.OrderEntry{Quantity: input.Quantity}
	var fieldErrors []apperror.FieldError
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ci, ok := itemMap[*ref.id]
		switch {
		case !ok || !ci.IsActive:
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: ref.field, Message: "item not found"})
		case ci.Kind != ref.kind:
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: ref.field, Message: fmt.Sprintf("%s is not a %s item", ci.Name, ref.kind)})
		default:
			candidate.Items = append(candidate.Items, ci.ToEntryItem())
		}
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order == nil {
			st.Order = s.newOrder(sess)
		}
		for i := range st.Order.Entries {
			existing := &st.Order.Entries[i]
			if !existing.HasDiscount() && existing.SameRefs(&candidate) {
				existing.Quantity += candidate.Quantity
				return nil
			}
		}
		candidate.EntryNo = st.Order.NextEntryNo()
		candidate.CreatedAt = s.now()
		st.Order.Entries = append(st.Order.Entries, candidate)
		return nil
	})
}

func (s *OrderService) newOrder(sess *Session) *entity.Order {
	return &entity.Order{
		ID:           uuid.New(),
		SessionID:    sess.ID,
		Mode:         sess.Mode,
		OrderType:    enum.OrderTypeDineIn,
		Status:       enum.OrderStatusPending,
		CashierID:    sess.CashierID,
		CashierName:  sess.CashierName,
		DiscountKind: enum.DiscountKindNone,
		CreatedAt:    s.now(),
	}
}

// VoidEntry removes an entry from the pending order. A manager must authorize it.
func (s *OrderService) VoidEntry(ctx context.Context, actor Actor, manager *Actor, sessionID uuid.UUID, entryNo int, reason string) (*SessionSnapshot, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}

	var event AuditEvent
	snap, err := s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order == nil {
			return apperror.NewNotFoundError("Entry")
		}
		e := st.Order.Entry(entryNo)
		if e == nil {
			return apperror.NewNotFoundError("Entry")
		}
		if err := guardEntries(st); err != nil {
			return err
		}
		event = AuditEvent{
			Action:     "void_entry",
			Actor:      actor.ID,
			ApprovedBy: manager.ID,
			Mode:       sess.Mode,
			OrderID:    st.Order.ID,
			EntryNo:    entryNo,
			Amount:     e.Subtotal(),
			Reason:     reason,
		}
		st.Order.RemoveEntry(entryNo)
		st.Order.HasVoidedItems = true
		dropDiscountFor(st, entryNo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, event)
	return snap, nil
}

// dropDiscountFor removes discount references to a voided entry and falls
// back to no discount when nothing is left for the class to apply to
func dropDiscountFor(st *sessionState, entryNo int) {
	switch d := st.Discount.(type) {
	case entity.SeniorOrPWD:
		kept := d.Beneficiaries[:0]
		for _, b := range d.Beneficiaries {
			if b.EntryNo != entryNo {
				kept = append(kept, b)
			}
		}
		if len(kept) == 0 {
			st.Discount = entity.NoDiscount{}
		} else {
			st.Discount = entity.SeniorOrPWD{Beneficiaries: kept}
		}
	case entity.Coupon:
		for i := range st.Order.Entries {
			if st.Order.Entries[i].CouponCode != "" {
				return
			}
		}
		st.Discount = entity.NoDiscount{}
	case entity.Other:
		if !d.EntryScoped {
			return
		}
		for i := range st.Order.Entries {
			if st.Order.Entries[i].IsDiscountPercent {
				return
			}
		}
		st.Discount = entity.NoDiscount{}
	}
}

// EditEntryQuantity changes quantity, and optionally the base unit price, of an undiscounted entry
func (s *OrderService) EditEntryQuantity(ctx context.Context, actor Actor, sessionID uuid.UUID, entryNo, quantity int, price *decimal.Decimal) (*SessionSnapshot, error) {
	if quantity <= 0 {
		return nil, apperror.NewFieldError("quantity", "quantity must be at least 1")
	}
	if price != nil && price.IsNegative() {
		return nil, apperror.NewFieldError("price", "price cannot be negative")
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order == nil {
			return apperror.NewNotFoundError("Entry")
		}
		e := st.Order.Entry(entryNo)
		if e == nil {
			return apperror.NewNotFoundError("Entry")
		}
		if !e.IsEnableEdit() {
			return apperror.NewStateError("Entry has a discount applied; void it instead")
		}
		if err := guardEntries(st); err != nil {
			return err
		}
		e.Quantity = quantity
		if price != nil {
			if base := e.Item(enum.ItemKindMenu); base != nil {
				base.UnitPrice = money.Round(*price)
			}
		}
		return nil
	})
}

// SetOrderType sets dine-in, take-out or delivery
func (s *OrderService) SetOrderType(ctx context.Context, actor Actor, sessionID uuid.UUID, orderType enum.OrderType) (*SessionSnapshot, error) {
	if !orderType.Valid() {
		return nil, apperror.NewFieldError("order_type", "invalid order type")
	}
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if st.Order == nil {
			return apperror.NewStateError("No open order")
		}
		st.Order.OrderType = orderType
		return nil
	})
}

// guardDiscount enforces the ordering rules shared by every discount change
// guardEntries blocks entry changes that could lower the amount due below
// what was already tendered
func guardEntries(st *sessionState) error {
	if !st.Tender.IsEmpty() {
		return apperror.NewStateError("Clear the tender before changing entries")
	}
	return nil
}

func guardDiscount(st *sessionState, kind enum.DiscountKind) error {
	if st.Order == nil || len(st.Order.Entries) == 0 {
		return apperror.NewStateError("No open order")
	}
	if !st.Tender.IsEmpty() {
		return apperror.NewStateError("Clear the tender before changing the discount")
	}
	if current := st.Discount.Kind(); current != enum.DiscountKindNone && current != kind {
		return apperror.NewStateError("A " + current.String() + " discount is already applied; clear it first")
	}
	return nil
}

// splitUnits detaches units from an entry into a new entry and returns its
// number; the entry itself is returned when it holds exactly units
func splitUnits(o *entity.Order, entryNo, units int) int {
	e := o.Entry(entryNo)
	if e.Quantity == units {
		return entryNo
	}
	part := e.Clone()
	part.ID = uuid.Nil
	part.Quantity = units
	e.Quantity -= units
	part.EntryNo = o.NextEntryNo()
	o.Entries = append(o.Entries, part)
	return part.EntryNo
}

// BeneficiaryInput identifies a senior citizen or PWD and the entry they claim
type BeneficiaryInput struct {
	Type     enum.BeneficiaryType
	Name     string
	IDNumber string
	EntryNo  int
}

// ApplySeniorDiscount flags one unit of each referenced entry per beneficiary
func (s *OrderService) ApplySeniorDiscount(ctx context.Context, actor Actor, sessionID uuid.UUID, beneficiaries []BeneficiaryInput) (*SessionSnapshot, error) {
	if len(beneficiaries) == 0 {
		return nil, apperror.NewFieldError("beneficiaries", "at least one beneficiary is required")
	}
	var fieldErrors []apperror.FieldError
	for i, b := range beneficiaries {
		field := fmt.Sprintf("beneficiaries.%d", i)
		if !b.Type.Valid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".type", Message: "type must be senior or pwd"})
		}
		if strings.TrimSpace(b.Name) == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".name", Message: "name is required"})
		}
		if strings.TrimSpace(b.IDNumber) == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".id_number", Message: "ID number is required"})
		}
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := guardDiscount(st, enum.DiscountKindSeniorPWD); err != nil {
			return err
		}
		var class entity.SeniorOrPWD
		if current, ok := st.Discount.(entity.SeniorOrPWD); ok {
			class = current
		}
		for i, b := range beneficiaries {
			e := st.Order.Entry(b.EntryNo)
			if e == nil {
				return apperror.NewFieldError(fmt.Sprintf("beneficiaries.%d.entry_no", i), "entry not found")
			}
			if e.HasDiscount() {
				return apperror.NewStateError(fmt.Sprintf("Entry %d is already discounted", b.EntryNo))
			}
			if e.Item(enum.ItemKindMenu) == nil {
				return apperror.NewFieldError(fmt.Sprintf("beneficiaries.%d.entry_no", i), "entry has no menu item")
			}
			target := st.Order.Entry(splitUnits(st.Order, b.EntryNo, 1))
			if b.Type == enum.BeneficiaryPWD {
				target.IsPWD = true
			} else {
				target.IsSenior = true
			}
			class.Beneficiaries = append(class.Beneficiaries, entity.DiscountBeneficiary{
				Type:     b.Type,
				Name:     strings.TrimSpace(b.Name),
				IDNumber: strings.TrimSpace(b.IDNumber),
				EntryNo:  target.EntryNo,
			})
		}
		st.Discount = class
		return nil
	})
}

// ApplyPromo applies an active promo code to the whole order
func (s *OrderService) ApplyPromo(ctx context.Context, actor Actor, sessionID uuid.UUID, code string) (*SessionSnapshot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.NewFieldError("code", "promo code is required")
	}
	promo, err := s.promoRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load promo code", err)
	}
	if promo == nil {
		return nil, apperror.NewNotFoundError("Promo code")
	}
	if !promo.IsRedeemableAt(s.now()) {
		return nil, apperror.NewStateError("Promo code is not active")
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := guardDiscount(st, enum.DiscountKindPromo); err != nil {
			return err
		}
		if st.Order.HasDiscountedEntries() {
			return apperror.NewStateError("Promo cannot be combined with item discounts")
		}
		st.Discount = promo.Class()
		return nil
	})
}

// ApplyCoupon covers itemQuantity base-item units. Each covered unit gets a
// negative placeholder line cancelling its menu price.
func (s *OrderService) ApplyCoupon(ctx context.Context, actor Actor, sessionID uuid.UUID, code string, itemQuantity int) (*SessionSnapshot, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.NewFieldError("code", "coupon code is required")
	}
	if itemQuantity <= 0 {
		return nil, apperror.NewFieldError("item_quantity", "item quantity must be at least 1")
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := guardDiscount(st, enum.DiscountKindCoupon); err != nil {
			return err
		}
		class := entity.Coupon{Code: code}
		if current, ok := st.Discount.(entity.Coupon); ok {
			if current.Code != code {
				return apperror.NewStateError("A different coupon is already applied; clear it first")
			}
			class = current
		}

		st.Order.SortEntries()
		candidates := make([]int, 0, len(st.Order.Entries))
		for i := range st.Order.Entries {
			e := &st.Order.Entries[i]
			if !e.HasDiscount() && e.Item(enum.ItemKindMenu) != nil {
				candidates = append(candidates, e.EntryNo)
			}
		}

		remaining := itemQuantity
		for _, no := range candidates {
			if remaining == 0 {
				break
			}
			units := st.Order.Entry(no).Quantity
			if units > remaining {
				units = remaining
			}
			target := st.Order.Entry(splitUnits(st.Order, no, units))
			menu := target.Item(enum.ItemKindMenu)
			target.CouponCode = code
			target.Items = append(target.Items, entity.EntryItem{
				Kind:      enum.ItemKindPlaceholder,
				Code:      code,
				Name:      "Coupon " + code,
				UnitPrice: menu.UnitPrice.Neg(),
				TaxType:   menu.TaxType,
			})
			remaining -= units
		}
		if remaining > 0 {
			return apperror.NewFieldError("item_quantity", "not enough undiscounted items for the coupon")
		}
		class.ItemQuantity += itemQuantity
		st.Discount = class
		return nil
	})
}

// ApplyOtherDiscount applies a manual percent discount to the given entries,
// or to the whole order when entryNos is empty
func (s *OrderService) ApplyOtherDiscount(ctx context.Context, actor Actor, sessionID uuid.UUID, percent decimal.Decimal, entryNos []int) (*SessionSnapshot, error) {
	if !percent.IsPositive() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.NewFieldError("percent", "percent must be greater than 0 and at most 100")
	}

	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := guardDiscount(st, enum.DiscountKindOther); err != nil {
			return err
		}
		for i := range st.Order.Entries {
			st.Order.Entries[i].IsDiscountPercent = false
		}
		for _, no := range entryNos {
			e := st.Order.Entry(no)
			if e == nil {
				return apperror.NewFieldError("entry_nos", fmt.Sprintf("entry %d not found", no))
			}
			if e.HasDiscount() {
				return apperror.NewStateError(fmt.Sprintf("Entry %d is already discounted", no))
			}
			e.IsDiscountPercent = true
		}
		st.Discount = entity.Other{Percent: percent, EntryScoped: len(entryNos) > 0}
		return nil
	})
}

// ClearDiscount removes the active discount and every entry flag it set
func (s *OrderService) ClearDiscount(ctx context.Context, actor Actor, sessionID uuid.UUID) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if !st.Tender.IsEmpty() {
			return apperror.NewStateError("Clear the tender before changing the discount")
		}
		if st.Order != nil {
			for i := range st.Order.Entries {
				e := &st.Order.Entries[i]
				e.IsSenior = false
				e.IsPWD = false
				e.IsDiscountPercent = false
				e.CouponCode = ""
				kept := e.Items[:0]
				for _, it := range e.Items {
					if !it.IsPlaceholder() {
						kept = append(kept, it)
					}
				}
				e.Items = kept
			}
		}
		st.Discount = entity.NoDiscount{}
		return nil
	})
}

func (s *OrderService) amountDue(st *sessionState) decimal.Decimal {
	return ComputeDiscount(st.Order, st.Discount, s.policy).Settle().AmountDue
}

func requireOrder(st *sessionState) error {
	if st.Order == nil || len(st.Order.Entries) == 0 {
		return apperror.NewStateError("No open order")
	}
	return nil
}

// SetCash replaces the cash tender line
func (s *OrderService) SetCash(ctx context.Context, actor Actor, sessionID uuid.UUID, amount decimal.Decimal) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := requireOrder(st); err != nil {
			return err
		}
		return st.Tender.SetCash(amount)
	})
}

// AddAlternativePayment adds a non-cash tender line
func (s *OrderService) AddAlternativePayment(ctx context.Context, actor Actor, sessionID uuid.UUID, payment AlternativePayment) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := requireOrder(st); err != nil {
			return err
		}
		return st.Tender.AddAlternative(payment, s.amountDue(st))
	})
}

// ApplyExactAmount tenders exactly the amount due in cash
func (s *OrderService) ApplyExactAmount(ctx context.Context, actor Actor, sessionID uuid.UUID) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		if err := requireOrder(st); err != nil {
			return err
		}
		st.Tender.ApplyExactAmount(s.amountDue(st))
		return nil
	})
}

// ClearTender removes every tender line
func (s *OrderService) ClearTender(ctx context.Context, actor Actor, sessionID uuid.UUID) (*SessionSnapshot, error) {
	return s.sessions.Mutate(sessionID, actor, s.policy, func(sess *Session, st *sessionState) error {
		st.Tender.Clear()
		return nil
	})
}
