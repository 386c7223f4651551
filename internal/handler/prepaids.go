package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type PrepaidsHandler struct {
	svc        service.PrepaidService
	dispatcher *worker.Dispatcher
}

func NewPrepaidsHandler(svc service.PrepaidService, dispatcher *worker.Dispatcher) *PrepaidsHandler {
	return &PrepaidsHandler{svc: svc, dispatcher: dispatcher}
}

// CreateForClient godoc
// @Summary Cargar credito prepaid a un cliente
// @Tags prepaids
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cliente"
// @Param request body dto.CreatePrepaidRequest true "Prepaid"
// @Success 201 {object} dto.PrepaidResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clients/{id}/prepaids [post]
func (h *PrepaidsHandler) CreateForClient(c *gin.Context) {
	clientID, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CreatePrepaidRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), clientID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "prepaid", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// ListByClient godoc
// @Summary Listar prepaids de un cliente
// @Tags prepaids
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cliente"
// @Param pending query bool false "Solo pendientes"
// @Success 200 {array} dto.PrepaidResponse
// @Router /v1/clients/{id}/prepaids [get]
func (h *PrepaidsHandler) ListByClient(c *gin.Context) {
	clientID, ok := parseID(c)
	if !ok {
		return
	}
	onlyPending := c.Query("pending") == "true"
	resp, err := h.svc.ListByClient(c.Request.Context(), clientID, onlyPending)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance godoc
// @Summary Saldo prepaid pendiente de un cliente
// @Tags prepaids
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cliente"
// @Success 200 {object} map[string]interface{}
// @Router /v1/clients/{id}/prepaids/balance [get]
func (h *PrepaidsHandler) Balance(c *gin.Context) {
	clientID, ok := parseID(c)
	if !ok {
		return
	}
	total, err := h.svc.TotalPendingForClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientId": clientID.String(), "balance": total})
}

// List godoc
// @Summary Listar prepaids (todas las cuentas)
// @Tags prepaids
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param status query string false "PENDING | CONSUMED"
// @Param search query string false "Nombre o email del cliente"
// @Success 200 {object} dto.Paginated[dto.PrepaidResponse]
// @Router /v1/prepaids [get]
func (h *PrepaidsHandler) List(c *gin.Context) {
	var filter dto.PrepaidFilter
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

// Get godoc
// @Summary Obtener prepaid por id
// @Tags prepaids
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.PrepaidResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/prepaids/{id} [get]
func (h *PrepaidsHandler) Get(c *gin.Context) {
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

// UpdateStatus godoc
// @Summary Cambiar estado de un prepaid
// @Tags prepaids
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdatePrepaidStatusRequest true "Estado"
// @Success 200 {object} dto.PrepaidResponse
// @Router /v1/prepaids/{id}/status [patch]
func (h *PrepaidsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePrepaidStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "prepaid", resp.ID, "update_status", req)
	c.JSON(http.StatusOK, resp)
}
