package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/middleware"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EgressesHandler struct {
	svc        service.EgressService
	dispatcher *worker.Dispatcher
}

func NewEgressesHandler(svc service.EgressService, dispatcher *worker.Dispatcher) *EgressesHandler {
	return &EgressesHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Registrar egreso
// @Tags egresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEgressRequest true "Egreso"
// @Success 201 {object} dto.EgressResponse
// @Router /v1/egresses [post]
func (h *EgressesHandler) Create(c *gin.Context) {
	var req dto.CreateEgressRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var userID *uuid.UUID
	if claims := middleware.GetClaims(c); claims != nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			userID = &id
		}
	}

	resp, err := h.svc.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "egress", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar egresos
// @Tags egresses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param status query string false "PENDING | COMPLETED | CANCELLED"
// @Param type query string false "WITHDRAWAL | EXPENSE | REFUND | TRANSFER | OTHER"
// @Param currency query string false "Moneda (ISO 4217)"
// @Success 200 {object} dto.Paginated[dto.EgressResponse]
// @Router /v1/egresses [get]
func (h *EgressesHandler) List(c *gin.Context) {
	var filter dto.EgressFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Totals godoc
// @Summary Totales de egresos completados por moneda
// @Tags egresses
// @Produce json
// @Security BearerAuth
// @Param from query string false "Fecha desde (YYYY-MM-DD)"
// @Param to query string false "Fecha hasta (YYYY-MM-DD)"
// @Success 200 {array} dto.EgressTotal
// @Router /v1/egresses/totals [get]
func (h *EgressesHandler) Totals(c *gin.Context) {
	resp, err := h.svc.TotalsByCurrency(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Obtener egreso por id
// @Tags egresses
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.EgressResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/egresses/{id} [get]
func (h *EgressesHandler) Get(c *gin.Context) {
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
// @Summary Actualizar egreso pendiente
// @Tags egresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateEgressRequest true "Cambios"
// @Success 200 {object} dto.EgressResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/egresses/{id} [patch]
func (h *EgressesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateEgressRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "egress", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary Completar egreso
// @Tags egresses
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.EgressResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/egresses/{id}/complete [post]
func (h *EgressesHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "egress", resp.ID, "complete", resp)
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancelar egreso
// @Tags egresses
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.EgressResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/egresses/{id}/cancel [post]
func (h *EgressesHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "egress", resp.ID, "cancel", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar egreso
// @Tags egresses
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/egresses/{id} [delete]
func (h *EgressesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "egress", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}
