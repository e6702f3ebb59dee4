package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
)

// SessionHandler handles the cashier session: the open order, its
// discount, its tender and finalization
type SessionHandler struct {
	orderService    *service.OrderService
	checkoutService *service.CheckoutService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(orderService *service.OrderService, checkoutService *service.CheckoutService) *SessionHandler {
	return &SessionHandler{orderService: orderService, checkoutService: checkoutService}
}

// sessionCall runs fn for the acting operator against the :id session and
// writes the resulting snapshot
func (h *SessionHandler) sessionCall(c *gin.Context, message string, fn func(actor service.Actor, sessionID uuid.UUID) (*service.SessionSnapshot, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	snapshot, err := fn(actor, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, snapshot)
}

func entryNoParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("entryNo"))
	if err != nil || n < 1 {
		response.BadRequest(c, "Invalid entry number")
		return 0, false
	}
	return n, true
}

// Open handles opening a cashier session
// @Summary Open session
// @Description Opens a live or training session for the cashier. Returns the existing one if already open.
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.OpenSessionRequest true "Session data"
// @Success 201 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snapshot, err := h.orderService.OpenSession(c.Request.Context(), actor, &service.OpenSessionInput{
		Mode:        enum.Mode(req.Mode),
		OpeningFund: decimalOrZero(req.OpeningFund),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Session opened successfully", snapshot)
}

// Get handles reading the session with its live totals
// @Summary Get session
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	h.sessionCall(c, "Session retrieved successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.GetSession(c.Request.Context(), actor, id)
	})
}

// Close handles closing the session
// @Summary Close session
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	h.sessionCall(c, "Session closed successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.CloseSession(c.Request.Context(), actor, id)
	})
}

// AddEntry handles adding a menu item to the open order
// @Summary Add entry
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.AddEntryRequest true "Entry data"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /sessions/{id}/entries [post]
func (h *SessionHandler) AddEntry(c *gin.Context) {
	var req request.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Entry added successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.AddEntry(c.Request.Context(), actor, id, &service.AddEntryInput{
			MenuItemID: uuid.MustParse(req.MenuItemID),
			DrinkID:    optionalUUID(req.DrinkID),
			AddOnID:    optionalUUID(req.AddOnID),
			Quantity:   req.Quantity,
		})
	})
}

// EditEntry handles changing an entry's quantity
// @Summary Edit entry
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param entryNo path int true "Entry number"
// @Param request body request.EditEntryRequest true "Quantity"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/entries/{entryNo} [patch]
func (h *SessionHandler) EditEntry(c *gin.Context) {
	entryNo, ok := entryNoParam(c)
	if !ok {
		return
	}
	var req request.EditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Entry updated successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.EditEntryQuantity(c.Request.Context(), actor, id, entryNo, req.Quantity, req.Price)
	})
}

// VoidEntry handles removing an entry. Requires a manager override.
// @Summary Void entry
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param entryNo path int true "Entry number"
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.VoidEntryRequest true "Reason"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /sessions/{id}/entries/{entryNo}/void [post]
func (h *SessionHandler) VoidEntry(c *gin.Context) {
	entryNo, ok := entryNoParam(c)
	if !ok {
		return
	}
	var req request.VoidEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Entry voided successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.VoidEntry(c.Request.Context(), actor, managerOf(c, actor), id, entryNo, req.Reason)
	})
}

// SetOrderType handles switching dine-in, take-out and delivery
// @Summary Set order type
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.OrderTypeRequest true "Order type"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/order-type [put]
func (h *SessionHandler) SetOrderType(c *gin.Context) {
	var req request.OrderTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Order type updated successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.SetOrderType(c.Request.Context(), actor, id, enum.OrderType(req.OrderType))
	})
}

// ApplySenior handles the senior citizen / PWD discount
// @Summary Apply senior or PWD discount
// @Tags discounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.SeniorDiscountRequest true "Beneficiaries"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /sessions/{id}/discounts/senior [post]
func (h *SessionHandler) ApplySenior(c *gin.Context) {
	var req request.SeniorDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	beneficiaries := make([]service.BeneficiaryInput, 0, len(req.Beneficiaries))
	for _, b := range req.Beneficiaries {
		beneficiaries = append(beneficiaries, service.BeneficiaryInput{
			Type:     enum.BeneficiaryType(b.Type),
			Name:     b.Name,
			IDNumber: b.IDNumber,
			EntryNo:  b.EntryNo,
		})
	}

	h.sessionCall(c, "Discount applied successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ApplySeniorDiscount(c.Request.Context(), actor, id, beneficiaries)
	})
}

// ApplyPromo handles a promo code
// @Summary Apply promo code
// @Tags discounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.PromoCodeRequest true "Promo code"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/discounts/promo [post]
func (h *SessionHandler) ApplyPromo(c *gin.Context) {
	var req request.PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Discount applied successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ApplyPromo(c.Request.Context(), actor, id, req.Code)
	})
}

// ApplyCoupon handles a coupon against the placeholder entries
// @Summary Apply coupon
// @Tags discounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.CouponRequest true "Coupon"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/discounts/coupon [post]
func (h *SessionHandler) ApplyCoupon(c *gin.Context) {
	var req request.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Discount applied successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ApplyCoupon(c.Request.Context(), actor, id, req.Code, req.ItemQuantity)
	})
}

// ApplyOther handles the capped percentage discount
// @Summary Apply other discount
// @Tags discounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.OtherDiscountRequest true "Percent and entries"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/discounts/other [post]
func (h *SessionHandler) ApplyOther(c *gin.Context) {
	var req request.OtherDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Discount applied successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ApplyOtherDiscount(c.Request.Context(), actor, id, *req.Percent, req.EntryNos)
	})
}

// ClearDiscount handles removing the applied discount
// @Summary Clear discount
// @Tags discounts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/discounts [delete]
func (h *SessionHandler) ClearDiscount(c *gin.Context) {
	h.sessionCall(c, "Discount cleared successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ClearDiscount(c.Request.Context(), actor, id)
	})
}

// SetCash handles the cash tendered
// @Summary Set cash
// @Tags tender
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.CashRequest true "Cash amount"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/tender/cash [put]
func (h *SessionHandler) SetCash(c *gin.Context) {
	var req request.CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	h.sessionCall(c, "Tender updated successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.SetCash(c.Request.Context(), actor, id, *req.Amount)
	})
}

// AddPayment handles a non-cash payment line
// @Summary Add payment
// @Tags tender
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request.PaymentRequest true "Payment"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/tender/payments [post]
func (h *SessionHandler) AddPayment(c *gin.Context) {
	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment := service.AlternativePayment{
		PaymentType: req.PaymentType,
		Amount:      *req.Amount,
		ReferenceNo: req.ReferenceNo,
	}
	h.sessionCall(c, "Tender updated successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.AddAlternativePayment(c.Request.Context(), actor, id, payment)
	})
}

// ExactAmount handles tendering exactly the amount due in cash
// @Summary Exact amount
// @Tags tender
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/tender/exact [post]
func (h *SessionHandler) ExactAmount(c *gin.Context) {
	h.sessionCall(c, "Tender updated successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ApplyExactAmount(c.Request.Context(), actor, id)
	})
}

// ClearTender handles removing every tender line
// @Summary Clear tender
// @Tags tender
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/tender [delete]
func (h *SessionHandler) ClearTender(c *gin.Context) {
	h.sessionCall(c, "Tender cleared successfully", func(actor service.Actor, id uuid.UUID) (*service.SessionSnapshot, error) {
		return h.orderService.ClearTender(c.Request.Context(), actor, id)
	})
}

// Finalize handles checkout: the invoice number is allocated, the ledger is
// posted and the fiscal totals advance together or not at all
// @Summary Finalize order
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /sessions/{id}/finalize [post]
func (h *SessionHandler) Finalize(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.checkoutService.Finalize(c.Request.Context(), actor, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order finalized successfully", order)
}
