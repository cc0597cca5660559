package handler

import (
	"errors"
	"net/http"

	"ecommerce_api/internal/logger"
	"ecommerce_api/internal/model"
	"ecommerce_api/internal/service"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Errors     []FieldError      `json:"errors,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const msgInternal = "Internal server error"

// Responder writes envelopes and maps service errors to statuses.
// In debug mode internal failures carry the underlying error text.
type Responder struct {
	log   *logger.Logger
	debug bool
}

// NewResponder creates a new Responder
func NewResponder(log *logger.Logger, debug bool) *Responder {
	return &Responder{log: log, debug: debug}
}

func (r *Responder) OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func (r *Responder) Page(c *gin.Context, data any, p model.Pagination) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

func (r *Responder) Fail(c *gin.Context, status int, message string, errs ...FieldError) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message, Errors: errs})
}

// Error maps err to a status by its kind. Untyped errors are logged and reported as 500.
func (r *Responder) Error(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == service.KindValidation {
		fe := FieldError{Field: "unknown"}
		var se *service.Error
		if errors.As(err, &se) {
			fe.Message = se.Message
			if se.Field != "" {
				fe.Field = se.Field
			}
		}
		r.Fail(c, http.StatusBadRequest, msgValidationFailed, fe)
		return
	}
	if kind != service.KindInternal {
		r.Fail(c, statusFor(kind), err.Error())
		return
	}

	r.log.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)

	resp := Response{Success: false, Message: msgInternal}
	if r.debug {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
