package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc        service.SaleService
	dispatcher *worker.Dispatcher
}

func NewSalesHandler(svc service.SaleService, dispatcher *worker.Dispatcher) *SalesHandler {
	return &SalesHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Registrar venta
// @Description Valida stock, genera numero de venta, liquida credito prepaid y
// @Description descuenta stock en una unica transaccion.
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSaleRequest true "Venta"
// @Success 201 {object} dto.SaleResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "sale", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar ventas
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param search query string false "Numero de venta o nombre del cliente"
// @Param from query string false "Fecha desde (YYYY-MM-DD)"
// @Param to query string false "Fecha hasta (YYYY-MM-DD)"
// @Success 200 {object} dto.Paginated[dto.SaleResponse]
// @Router /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Daily godoc
// @Summary Reporte de ventas del dia
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param date query string false "Fecha (YYYY-MM-DD), por defecto hoy"
// @Param timezone query string false "Zona horaria IANA"
// @Success 200 {object} dto.DailySalesResponse
// @Router /v1/sales/daily [get]
func (h *SalesHandler) Daily(c *gin.Context) {
	var q dto.DailySalesQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.Daily(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Obtener venta por id
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
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
// @Summary Actualizar o cancelar venta
// @Description Cancelar (status=CANCELLED) restaura stock y credito prepaid.
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateSaleRequest true "Cambios"
// @Success 200 {object} dto.SaleResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales/{id} [patch]
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "sale", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar venta
// @Description Restaura stock y credito prepaid incondicionalmente.
// @Tags sales
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/sales/{id} [delete]
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "sale", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}

// Receipt godoc
// @Summary Descargar comprobante PDF
// @Tags sales
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	path, err := h.svc.Receipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "comprobante.pdf")
}
