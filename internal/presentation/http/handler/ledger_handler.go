package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// LedgerHandler handles sales ledger HTTP requests
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// List handles listing ledger rows, newest first
// @Summary List ledger rows
// @Tags ledger
// @Security BearerAuth
// @Produce json
// @Param mode query string false "live or training" default(live)
// @Param entry_type query string false "item, tender, totals, senior_pwd or reversal"
// @Param invoice_no query int false "Invoice number"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	mode, ok := modeQuery(c)
	if !ok {
		return
	}

	params := &repository.LedgerFilterParams{
		Pagination: paginationQuery(c),
		Mode:       &mode,
	}
	if entryType := c.Query("entry_type"); entryType != "" {
		t := enum.LedgerEntryType(entryType)
		if !t.Valid() {
			response.BadRequest(c, "Invalid entry_type")
			return
		}
		params.EntryType = &t
	}
	if invoiceStr := c.Query("invoice_no"); invoiceStr != "" {
		if invoiceNo, err := strconv.ParseInt(invoiceStr, 10, 64); err == nil {
			params.InvoiceNo = &invoiceNo
		}
	}

	rows, total, err := h.ledgerService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	p := params.Pagination
	response.SuccessWithPagination(c, 200, "Ledger retrieved successfully", rows,
		pagination.NewPagination(p.Page, p.PerPage, total))
}

// Unpost handles reversing a senior/PWD beneficiary row posted in error
// @Summary Unpost beneficiary row
// @Tags ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Ledger row ID"
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.ReasonRequest true "Reason"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /ledger/{id}/unpost [post]
func (h *LedgerHandler) Unpost(c *gin.Context) {
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

	row, err := h.ledgerService.UnpostBeneficiary(c.Request.Context(), managerOf(c, actor), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger row unposted successfully", row)
}
