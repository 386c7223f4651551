package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

// UsersHandler exposes account management. Admin-only; the router guards it.
type UsersHandler struct {
	svc        service.UserService
	dispatcher *worker.Dispatcher
}

func NewUsersHandler(svc service.UserService, dispatcher *worker.Dispatcher) *UsersHandler {
	return &UsersHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Crear usuario
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Usuario"
// @Success 201 {object} dto.UserResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/users [post]
func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "user", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar usuarios
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param search query string false "Nombre o email"
// @Success 200 {object} dto.Paginated[dto.UserResponse]
// @Router /v1/users [get]
func (h *UsersHandler) List(c *gin.Context) {
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
// @Summary Obtener usuario por id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/users/{id} [get]
func (h *UsersHandler) Get(c *gin.Context) {
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
// @Summary Actualizar usuario
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateUserRequest true "Cambios"
// @Success 200 {object} dto.UserResponse
// @Router /v1/users/{id} [patch]
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "user", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar usuario
// @Tags users
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/users/{id} [delete]
func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "user", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}
