package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// FiscalHandler handles X and Z readings, cash withdrawals and counters
type FiscalHandler struct {
	fiscalService  *service.FiscalService
	printerService *service.PrinterService
}

// NewFiscalHandler creates a new fiscal handler
func NewFiscalHandler(fiscalService *service.FiscalService, printerService *service.PrinterService) *FiscalHandler {
	return &FiscalHandler{fiscalService: fiscalService, printerService: printerService}
}

// print sends the reading to the printer. A printer fault never undoes the
// reading; the caller sees it next to the data.
func (h *FiscalHandler) print(reading *entity.FiscalReading) gin.H {
	out := gin.H{"reading": reading, "printed": false}
	if h.printerService == nil {
		return out
	}
	if err := h.printerService.PrintReading(reading); err != nil {
		out["print_error"] = err.Error()
		return out
	}
	out["printed"] = true
	return out
}

// XReading handles the read-only X reading
// @Summary X reading
// @Description Snapshot of a shift or the open business day. Never changes a counter.
// @Tags fiscal
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.XReadingRequest true "Reading scope"
// @Success 200 {object} response.APIResponse
// @Router /fiscal/x-reading [post]
func (h *FiscalHandler) XReading(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req request.XReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	reading, err := h.fiscalService.XReading(c.Request.Context(), actor, &service.XReadingInput{
		Mode:         enum.Mode(req.Mode),
		SessionID:    optionalUUID(req.SessionID),
		DeclaredCash: req.DeclaredCash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.Print {
		response.OK(c, "X reading generated successfully", h.print(reading))
		return
	}
	response.OK(c, "X reading generated successfully", gin.H{"reading": reading, "printed": false})
}

// ZReading handles the end-of-day Z reading. Requires a manager.
// @Summary Z reading
// @Description Closes the business day. Only one Z reading per business date.
// @Tags fiscal
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.ZReadingRequest true "Mode"
// @Success 201 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /fiscal/z-reading [post]
func (h *FiscalHandler) ZReading(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req request.ZReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	z, err := h.fiscalService.ZReading(c.Request.Context(), managerOf(c, actor), enum.Mode(req.Mode), req.DeclaredCash)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := gin.H{"id": z.ID, "reading": z.Document, "printed": false}
	if req.Print {
		printed := h.print(z.Document)
		printed["id"] = z.ID
		out = printed
	}
	response.Created(c, "Z reading generated successfully", out)
}

// ListZReadings handles listing stored Z readings, newest first
// @Summary List Z readings
// @Tags fiscal
// @Security BearerAuth
// @Produce json
// @Param mode query string false "live or training" default(live)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /fiscal/z-readings [get]
func (h *FiscalHandler) ListZReadings(c *gin.Context) {
	mode, ok := modeQuery(c)
	if !ok {
		return
	}
	params := paginationQuery(c)

	readings, total, err := h.fiscalService.ListZReadings(c.Request.Context(), mode, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Z readings retrieved successfully", readings,
		pagination.NewPagination(params.Page, params.PerPage, total))
}

// GetZReading handles getting one stored Z reading
// @Summary Get Z reading
// @Tags fiscal
// @Security BearerAuth
// @Produce json
// @Param id path string true "Z reading ID"
// @Success 200 {object} response.APIResponse
// @Router /fiscal/z-readings/{id} [get]
func (h *FiscalHandler) GetZReading(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	z, err := h.fiscalService.GetZReading(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Z reading retrieved successfully", z)
}

// RecordWithdrawal handles a cash pull-out. Requires a manager.
// @Summary Record cash withdrawal
// @Tags fiscal
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.WithdrawalRequest true "Withdrawal"
// @Success 201 {object} response.APIResponse
// @Router /fiscal/withdrawals [post]
func (h *FiscalHandler) RecordWithdrawal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req request.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	withdrawal, err := h.fiscalService.RecordWithdrawal(c.Request.Context(), actor, managerOf(c, actor), &service.WithdrawalInput{
		Mode:      enum.Mode(req.Mode),
		SessionID: optionalUUID(req.SessionID),
		Amount:    *req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Withdrawal recorded successfully", withdrawal)
}

// ResetCounter handles resetting the accumulated grand total. Requires a manager.
// @Summary Reset accumulated sales
// @Tags fiscal
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param X-Manager-Username header string false "Manager override username"
// @Param X-Manager-Password header string false "Manager override password"
// @Param request body request.ResetCounterRequest true "Mode and reason"
// @Success 200 {object} response.APIResponse
// @Router /fiscal/reset [post]
func (h *FiscalHandler) ResetCounter(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req request.ResetCounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.fiscalService.ResetAccumulated(c.Request.Context(), managerOf(c, actor), enum.Mode(req.Mode), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Counter reset successfully", state)
}

// Status handles reading the fiscal counters of both modes
// @Summary Fiscal status
// @Tags fiscal
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /fiscal/status [get]
func (h *FiscalHandler) Status(c *gin.Context) {
	states, err := h.fiscalService.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Fiscal status retrieved successfully", states)
}
