package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/repository"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type ProductsHandler struct {
	svc        service.ProductService
	dispatcher *worker.Dispatcher
}

func NewProductsHandler(svc service.ProductService, dispatcher *worker.Dispatcher) *ProductsHandler {
	return &ProductsHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Crear producto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "Producto"
// @Success 201 {object} dto.ProductResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "product", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar productos
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param search query string false "Busqueda por nombre o codigo de barras"
// @Param category query string false "Categoria"
// @Success 200 {object} dto.Paginated[dto.ProductResponse]
// @Router /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q, c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByCategory godoc
// @Summary Listar productos de una categoria
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param category path string true "Categoria"
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Success 200 {object} dto.Paginated[dto.ProductResponse]
// @Router /v1/products/category/{category} [get]
func (h *ProductsHandler) ListByCategory(c *gin.Context) {
	var q dto.PageQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q, c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary Productos con stock bajo
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProductResponse
// @Router /v1/products/low-stock [get]
func (h *ProductsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Obtener producto por id
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Actualizar producto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateProductRequest true "Cambios"
// @Success 200 {object} dto.ProductResponse
// @Router /v1/products/{id} [patch]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "product", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar producto
// @Tags products
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "product", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary Ajustar stock
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.AdjustStockRequest true "Ajuste"
// @Success 200 {object} dto.ProductResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/products/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "product", resp.ID, "adjust_stock", req)
	c.JSON(http.StatusOK, resp)
}

// ── Public price check ────────────────────────────────────────────────────────

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the public barcode price endpoint.
// No authentication required — no side effects whatsoever.
type PriceCheckHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewPriceCheckHandler(repo repository.ProductRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{repo: repo, rdb: rdb}
}

// GetByBarcode godoc
// @Summary Consulta de precio por codigo de barras (sin autenticacion)
// @Tags price
// @Produce json
// @Param barcode path string true "Codigo de barras"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *PriceCheckHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + barcode

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	p, err := h.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.PriceCheckResponse{
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Category: p.Category,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
