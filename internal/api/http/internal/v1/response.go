package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/logger"
	customValidator "github.com/firetrack/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, status int, code ErrorCode) {
	c.AbortWithStatusJSON(status, getErrorStruct(code))
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, InvalidRequestCode)
		return
	}

	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}
	response := ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
	}
	response.Errors = out
	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

// serviceErrorResponse maps service errors onto statuses and error codes.
func serviceErrorResponse(c *gin.Context, err error) {
	var invalidCode *service.InvalidActivationCodeError
	var storageErr *service.StorageError

	switch {
	case errors.Is(err, service.ErrUserAlreadyExist):
		errorResponse(c, http.StatusConflict, UserAlreadyExistsCode)
	case errors.Is(err, service.ErrUserNotFound):
		errorResponse(c, http.StatusNotFound, UserNotFoundCode)
	case errors.Is(err, service.ErrInvalidEmail):
		errorResponse(c, http.StatusBadRequest, InvalidEmailCode)
	case errors.Is(err, service.ErrUserAlreadyActivated):
		errorResponse(c, http.StatusConflict, UserAlreadyActivatedCode)
	case errors.Is(err, service.ErrActivationCodeExpired):
		errorResponse(c, http.StatusGone, ActivationCodeExpiredCode)
	case errors.As(err, &invalidCode):
		c.AbortWithStatusJSON(http.StatusBadRequest, InvalidActivationCodeStruct{
			ErrorStruct:       *getErrorStruct(InvalidActivationCodeCode),
			RemainingAttempts: invalidCode.RemainingAttempts,
		})
	case errors.Is(err, service.ErrInvalidActivationCode):
		errorResponse(c, http.StatusBadRequest, InvalidActivationCodeCode)
	case errors.Is(err, service.ErrMaxAttemptsExceeded):
		errorResponse(c, http.StatusTooManyRequests, MaxAttemptsExceededCode)
	case errors.Is(err, service.ErrExpirationTimeOverflow):
		logger.Error("activation code expiration overflow", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, ExpirationTimeOverflowCode)
	case errors.As(err, &storageErr):
		logger.Error("activation storage failed", zap.String("op", string(storageErr.Op)), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
	default:
		logger.Error("request failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
	}
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "number":
		return "This field must be numeric"
	case "min":
		return fmt.Sprintf("Minimum length is %v", value)
	case "max":
		return fmt.Sprintf("Maximum length is %v", value)
	case customValidator.ActivationCodeTag:
		return "Activation code must be a six digit number"
	}
	return tag
}
