package helper

import (
	"errors"
	"net/http"

	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

// MaskInternalErrorsKey is set on the gin context in production so that
// unexpected failures reach clients only as a generic message.
const MaskInternalErrorsKey = "mask-internal-errors"

const internalErrorMessage = "Internal server error"

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", single(field, message))
}

func SendUnauthenticatedError(c *gin.Context, message string) {
	SendError(c, http.StatusUnauthorized, "UNAUTHENTICATED", single("auth", message))
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, "NOT_FOUND", single("resource", message))
}

// SendInternalError hides message when the context asks for masking.
func SendInternalError(c *gin.Context, message string) {
	if c.GetBool(MaskInternalErrorsKey) {
		message = internalErrorMessage
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", single("server", message))
}

// SendDomainError maps the error kinds of the domain package onto HTTP
// statuses. Anything else is an internal error.
func SendDomainError(c *gin.Context, err error) {
	domainErr, ok := domain.AsError(err)
	if !ok {
		SendInternalError(c, err.Error())
		return
	}

	field := domainErr.Field

	switch {
	case errors.Is(err, domain.ErrValidation):
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", single(field, domainErr.Message))
	case errors.Is(err, domain.ErrNotFound):
		SendNotFoundError(c, domainErr.Message)
	case errors.Is(err, domain.ErrUnauthorized):
		SendError(c, http.StatusForbidden, "FORBIDDEN", single("auth", domainErr.Message))
	case errors.Is(err, domain.ErrUnauthenticated):
		SendUnauthenticatedError(c, domainErr.Message)
	case errors.Is(err, domain.ErrConflict):
		SendError(c, http.StatusConflict, "CONFLICT", single(field, domainErr.Message))
	default:
		SendInternalError(c, domainErr.Message)
	}
}

func single(field, message string) []response.ValidationError {
	return []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}
}
