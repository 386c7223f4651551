package handler

import (
	"net/http"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type EmployeesHandler struct {
	svc        service.EmployeeService
	dispatcher *worker.Dispatcher
}

func NewEmployeesHandler(svc service.EmployeeService, dispatcher *worker.Dispatcher) *EmployeesHandler {
	return &EmployeesHandler{svc: svc, dispatcher: dispatcher}
}

// Create godoc
// @Summary Crear empleado
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEmployeeRequest true "Empleado"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/employees [post]
func (h *EmployeesHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "employee", resp.ID, "create", resp)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listar empleados
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina"
// @Param limit query int false "Limite"
// @Param search query string false "Nombre o email"
// @Success 200 {object} dto.Paginated[dto.EmployeeResponse]
// @Router /v1/employees [get]
func (h *EmployeesHandler) List(c *gin.Context) {
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
// @Summary Obtener empleado por id
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/employees/{id} [get]
func (h *EmployeesHandler) Get(c *gin.Context) {
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
// @Summary Actualizar empleado
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param request body dto.UpdateEmployeeRequest true "Cambios"
// @Success 200 {object} dto.EmployeeResponse
// @Router /v1/employees/{id} [patch]
func (h *EmployeesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "employee", resp.ID, "update", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Eliminar empleado
// @Tags employees
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 204
// @Router /v1/employees/{id} [delete]
func (h *EmployeesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	enqueueAudit(c, h.dispatcher, "employee", id.String(), "delete", nil)
	c.Status(http.StatusNoContent)
}
