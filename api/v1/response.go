package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrorCodeNotFound       = "NOT_FOUND"
	ErrorCodeInternal       = "INTERNAL_ERROR"
	ErrorCodeBadRequest     = "BAD_REQUEST"
	ErrorCodeNoData         = "NO_DATA"
	ErrorCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrorCodeReportNotFound = "REPORT_NOT_FOUND"
	ErrorCodeTooLarge       = "PAYLOAD_TOO_LARGE"
	ErrorCodeNotifier       = "NOTIFIER_FAILED"
)

// NewSuccessResponse creates a successful API response
func NewSuccessResponse(kind ResponseKind, data interface{}, metadata *ResponseMetadata) *APIResponse {
	return &APIResponse{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata:   metadata,
		Data:       data,
	}
}

// NewErrorResponse creates an error API response
func NewErrorResponse(errors []APIError) *APIResponse {
	return &APIResponse{
		Kind:       KindError,
		APIVersion: APIVersion,
		Metadata: &ResponseMetadata{
			GeneratedAt: time.Now(),
		},
		Errors: errors,
	}
}

// NewPaginatedResponse creates a paginated response with prev/next links
func NewPaginatedResponse(kind ResponseKind, data interface{}, total int, params QueryParams) *APIResponse {
	metadata := &ResponseMetadata{
		Total:       total,
		Limit:       params.Limit,
		Offset:      params.Offset,
		GeneratedAt: time.Now(),
		Links:       make(map[string]string),
	}

	if params.Limit > 0 {
		if params.Offset > 0 {
			prevOffset := params.Offset - params.Limit
			if prevOffset < 0 {
				prevOffset = 0
			}
			metadata.Links["prev"] = "?limit=" + strconv.Itoa(params.Limit) + "&offset=" + strconv.Itoa(prevOffset)
		}
		if params.Offset+params.Limit < total {
			metadata.Links["next"] = "?limit=" + strconv.Itoa(params.Limit) + "&offset=" + strconv.Itoa(params.Offset+params.Limit)
		}
	}

	return NewSuccessResponse(kind, data, metadata)
}

// SendSuccess sends a successful response
func SendSuccess(c *gin.Context, kind ResponseKind, data interface{}) {
	metadata := &ResponseMetadata{
		GeneratedAt: time.Now(),
		RequestID:   c.GetString("request_id"),
	}
	c.JSON(http.StatusOK, NewSuccessResponse(kind, data, metadata))
}

// SendPaginated sends a paginated response
func SendPaginated(c *gin.Context, kind ResponseKind, data interface{}, total int, params QueryParams) {
	response := NewPaginatedResponse(kind, data, total, params)
	response.Metadata.RequestID = c.GetString("request_id")
	c.JSON(http.StatusOK, response)
}

// SendError sends an error response
func SendError(c *gin.Context, statusCode int, code string, message string, details map[string]interface{}) {
	response := NewErrorResponse([]APIError{{
		Code:    code,
		Message: message,
		Details: details,
	}})
	response.Metadata.RequestID = c.GetString("request_id")
	c.JSON(statusCode, response)
}

// SendBadRequest sends bad request error response
func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, ErrorCodeBadRequest, message, nil)
}

// SendInternalServerError sends internal server error response
func SendInternalServerError(c *gin.Context, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternal,
		"Internal server error occurred", map[string]interface{}{"error": err.Error()})
}
