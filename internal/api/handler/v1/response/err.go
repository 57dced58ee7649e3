package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

// Err is the JSON error envelope. Field is set for single-field errors,
// Fields for validation failures spanning several inputs.
type Err struct {
	StatusCode int               `json:"-"`
	ErrorMsg   string            `json:"error"`
	Field      string            `json:"field,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%v - %v", e.StatusCode, e.ErrorMsg)
}

func ErrBadRequest(err error) *Err {
	e := &Err{
		StatusCode: http.StatusBadRequest,
		ErrorMsg:   err.Error(),
	}

	// ozzo validation errors map field -> reason; surface them
	// field-scoped so the form can highlight inputs.
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		e.ErrorMsg = "validation failed"
		e.Fields = make(map[string]string, len(vErrs))
		for field, fieldErr := range vErrs {
			e.Fields[field] = fieldErr.Error()
		}
	}

	return e
}

func ErrFieldConflict(field string, err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		ErrorMsg:   err.Error(),
		Field:      field,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		ErrorMsg:   fmt.Sprintf("%v with %v (%v) not found", resource, key, value),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		ErrorMsg:   err.Error(),
	}
}

func ErrUnauthorized() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		ErrorMsg:   "authentication required",
	}
}

func ErrUnprocessable(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnprocessableEntity,
		ErrorMsg:   err.Error(),
	}
}

func ErrServiceUnavailable(msg string) *Err {
	return &Err{
		StatusCode: http.StatusServiceUnavailable,
		ErrorMsg:   msg,
	}
}

// ErrInternalServerError logs the real cause and returns a generic
// message; internals never leak to the client.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		StatusCode: http.StatusInternalServerError,
		ErrorMsg:   "internal server error",
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
