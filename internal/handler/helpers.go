package handler

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/middleware"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate binds query parameters and runs validator tags.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID parses the :id path parameter as a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError resolves a service error into its HTTP status and safe body.
func respondError(c *gin.Context, err error) {
	status, body := apierror.StatusAndBody(err)
	c.JSON(status, body)
}

// enqueueAudit records a successful mutation on the async audit trail.
// Fire-and-forget: a nil dispatcher or marshal failure is silently ignored.
func enqueueAudit(c *gin.Context, d *worker.Dispatcher, entity, entityID, action string, value interface{}) {
	if d == nil {
		return
	}
	payload := worker.AuditJobPayload{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
	}
	if claims := middleware.GetClaims(c); claims != nil {
		payload.UserID = &claims.UserID
		payload.UserEmail = &claims.Email
	}
	if ip := c.ClientIP(); ip != "" {
		payload.IPAddress = &ip
	}
	if value != nil {
		if b, err := json.Marshal(value); err == nil {
			payload.NewValues = b
		}
	}
	d.EnqueueAudit(c.Request.Context(), payload)
}
