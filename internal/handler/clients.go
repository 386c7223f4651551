package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type ClientsHandler struct {
	svc        service.ClientService
	dispatcher *worker.Dispatcher
}

func NewClientsHandler(svc service.ClientService, dispatcher *worker.Dispatcher) *ClientsHandler {
	return &ClientsHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Crear cliente
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClientRequest true "Cliente"
// @Success 201 {object} dto.ClientResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "client", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar clientes
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param search query string false "Busqueda por nombre, email o CUIT"
// @Success 200 {object} dto.Paginated[dto.ClientResponse]
// @Router /v1/clients [get]
func (h *ClientsHandler) List(c *gin.Context) {
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

// Get godoc
// @Summary Obtener cliente por id (incluye prepaids y saldo)
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clients/{id} [get]
func (h *ClientsHandler) Get(c *gin.Context) {
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
// @Summary Actualizar cliente
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateClientRequest true "Cambios"
// @Success 200 {object} dto.ClientResponse
// @Router /v1/clients/{id} [patch]
func (h *ClientsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "client", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar cliente (cascada a prepaids)
// @Tags clients
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/clients/{id} [delete]
func (h *ClientsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "client", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}
