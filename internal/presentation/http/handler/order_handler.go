package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// OrderHandler handles finalized order HTTP requests
type OrderHandler struct {
	checkoutService *service.CheckoutService
	ledgerService   *service.LedgerService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkoutService *service.CheckoutService, ledgerService *service.LedgerService) *OrderHandler {
	return &OrderHandler{checkoutService: checkoutService, ledgerService: ledgerService}
}

// List handles listing finalized orders
// @Summary List orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param mode query string false "live or training" default(live)
// @Param status query int false "Order status"
// @Param cashier_id query string false "Cashier ID"
// @Param session_id query string false "Session ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	mode, ok := modeQuery(c)
	if !ok {
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: paginationQuery(c),
		Mode:       &mode,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.OrderStatus(statusInt)
			params.Status = &status
		}
	}

	if cashierIDStr := c.Query("cashier_id"); cashierIDStr != "" {
		if cashierID, err := uuid.Parse(cashierIDStr); err == nil {
			params.CashierID = &cashierID
		}
	}

	if sessionIDStr := c.Query("session_id"); sessionIDStr != "" {
		if sessionID, err := uuid.Parse(sessionIDStr); err == nil {
			params.SessionID = &sessionID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			endDate = endDate.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &endDate
		}
	}

	orders, total, err := h.checkoutService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	p := params.Pagination
	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", orders,
		pagination.NewPagination(p.Page, p.PerPage, total))
}

// Get handles getting an order with its entries, tenders and beneficiaries
// @Summary Get order
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.checkoutService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// GetByInvoice handles looking an order up by its invoice number
// @Summary Get order by invoice number
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param invoiceNo path int true "Invoice number"
// @Param mode query string false "live or training" default(live)
// @Success 200 {object} response.APIResponse
// @Router /orders/invoice/{invoiceNo} [get]
func (h *OrderHandler) GetByInvoice(c *gin.Context) {
	mode, ok := modeQuery(c)
	if !ok {
		return
	}
	invoiceNo, err := strconv.ParseInt(c.Param("invoiceNo"), 10, 64)
	if err != nil || invoiceNo < 1 {
		response.BadRequest(c, "Invalid invoice number")
		return
	}

	order, err := h.checkoutService.GetOrderByInvoice(c.Request.Context(), mode, invoiceNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Ledger handles listing the ledger rows posted for an order
// @Summary Order ledger
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.APIResponse
// @Router /orders/{id}/ledger [get]
func (h *OrderHandler) Ledger(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.ledgerService.ListByOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger retrieved successfully", rows)
}

func (h *OrderHandler) compensate(c *gin.Context, message string,
	fn func(actor service.Actor, manager *service.Actor, orderID uuid.UUID, reason string) (*entity.Order, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := fn(actor, managerOf(c, actor), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, order)
}

// Void handles voiding a finalized order. Every posted row is reversed;
// the invoice number stays consumed.
// @Summary Void order
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.ReasonRequest true "Reason"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /orders/{id}/void [post]
func (h *OrderHandler) Void(c *gin.Context) {
	h.compensate(c, "Order voided successfully", func(actor service.Actor, manager *service.Actor, id uuid.UUID, reason string) (*entity.Order, error) {
		return h.ledgerService.VoidOrder(c.Request.Context(), actor, manager, id, reason)
	})
}

// Refund handles refunding a finalized order
// @Summary Refund order
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.ReasonRequest true "Reason"
// @Success 200 {object} response.APIResponse
// @Router /orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	h.compensate(c, "Order refunded successfully", func(actor service.Actor, manager *service.Actor, id uuid.UUID, reason string) (*entity.Order, error) {
		return h.ledgerService.RefundOrder(c.Request.Context(), actor, manager, id, reason)
	})
}
