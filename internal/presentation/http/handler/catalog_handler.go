package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles catalog item and promo code HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func taxTypeOf(s string) enum.TaxType {
	switch s {
	case "Exempt":
		return enum.TaxTypeExempt
	case "ZeroRated":
		return enum.TaxTypeZeroRated
	default:
		return enum.TaxTypeVATable
	}
}

func itemInput(req *request.CatalogItemRequest) *service.CatalogItemInput {
	return &service.CatalogItemInput{
		Code:          req.Code,
		Name:          req.Name,
		Kind:          enum.ItemKind(req.Kind),
		Price:         *req.Price,
		TaxType:       taxTypeOf(req.TaxType),
		RequiresDrink: req.RequiresDrink,
		RequiresAddOn: req.RequiresAddOn,
		IsActive:      req.IsActive,
	}
}

// ListItems handles listing catalog items
// @Summary List catalog items
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param kind query string false "menu, drink, add_on or placeholder"
// @Param search query string false "Search by name"
// @Param active_only query bool false "Only active items"
// @Success 200 {object} response.APIResponse
// @Router /catalog/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	params := &repository.CatalogFilterParams{
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active_only") == "true",
	}
	if kind := c.Query("kind"); kind != "" {
		k := enum.ItemKind(kind)
		if !k.Valid() {
			response.BadRequest(c, "Invalid kind")
			return
		}
		params.Kind = &k
	}

	items, err := h.catalogService.ListItems(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog items retrieved successfully", items)
}

// GetItem handles getting a catalog item
// @Summary Get catalog item
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /catalog/items/{id} [get]
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog item retrieved successfully", item)
}

// CreateItem handles creating a catalog item
// @Summary Create catalog item
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CatalogItemRequest true "Item data"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /catalog/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), itemInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Catalog item created successfully", item)
}

// UpdateItem handles replacing a catalog item. Open orders keep the price
// they were rung up at.
// @Summary Update catalog item
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body request.CatalogItemRequest true "Item data"
// @Success 200 {object} response.APIResponse
// @Router /catalog/items/{id} [put]
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), id, itemInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog item updated successfully", item)
}

// ListPromos handles listing promo codes
// @Summary List promo codes
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /catalog/promos [get]
func (h *CatalogHandler) ListPromos(c *gin.Context) {
	promos, err := h.catalogService.ListPromos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Promo codes retrieved successfully", promos)
}

// SavePromo handles creating or replacing a promo code
// @Summary Save promo code
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.PromoRequest true "Promo data"
// @Success 200 {object} response.APIResponse
// @Router /catalog/promos [put]
func (h *CatalogHandler) SavePromo(c *gin.Context) {
	var req request.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.PromoInput{
		Code:      req.Code,
		Name:      req.Name,
		Amount:    decimalOrZero(req.Amount),
		Percent:   decimalOrZero(req.Percent),
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		IsActive:  req.IsActive,
	}

	promo, err := h.catalogService.SavePromo(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Promo code saved successfully", promo)
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
