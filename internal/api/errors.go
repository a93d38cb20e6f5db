package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorCode defines standard error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeOrderNotFound    ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeViewNotFound     ErrorCode = "VIEW_NOT_FOUND"
	ErrCodeViewUnavailable  ErrorCode = "VIEW_UNAVAILABLE"
)

// NewErrorResponse creates a new error response.
func NewErrorResponse(code ErrorCode, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error:   string(code),
		Message: message,
		Code:    string(code),
		Details: details,
	}
}

// AbortWithError aborts the request with a standardized error response.
func AbortWithError(c *gin.Context, status int, code ErrorCode, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(code, message, nil))
}

// AbortWithBindingError maps a gin binding failure to a 400.
// Validator failures are reported per JSON field.
func AbortWithBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[jsonField(fe.Field())] = validationMessage(fe)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(ErrCodeValidationFailed, "Validation failed", details))
}

// AbortWithDomainError maps a validation BaseError to a 400 listing every field.
func AbortWithDomainError(c *gin.Context, err error) {
	base, ok := errors.AsBaseError(err)
	if !ok {
		AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	details := make(map[string]string, len(base.GetDetails()))
	for _, d := range base.GetDetails() {
		details[d.Field] = d.Message
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(ErrCodeValidationFailed, "Validation failed", details))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag()
	}
}

// jsonField maps request struct fields to their JSON names.
func jsonField(field string) string {
	if field == "Side" {
		return "type"
	}
	return strings.ToLower(field)
}
