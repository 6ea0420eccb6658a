package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-resources/internal/utils/platformerrors"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"` // UUID from PlatformError
	RequestID string `json:"request_id,omitempty"`
}

// HandleError writes err as JSON. Client errors carry their own message;
// anything else answers with fallback so internals never leak.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		message := fallback
		if domainErr.IsClientError() && domainErr.Message != "" {
			message = domainErr.Message
		}
		_ = reqCtx.Error(err)
		reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType()), ErrorResponse{
			Error:     message,
			Code:      domainErr.GetUUID(),
			RequestID: domainErr.GetRequestID(),
		})
		return
	}

	_ = reqCtx.Error(err)
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:     fallback,
		RequestID: platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
	})
}

// HandleNewError creates a typed error at the handler layer and writes it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, errorType, message, nil, uuid)
	HandleError(reqCtx, err, message)
}
