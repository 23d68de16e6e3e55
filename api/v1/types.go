package v1

import (
	"time"

	"github.com/yourusername/sysdiag/core"
)

// APIVersion defines the API version
const APIVersion = "v1"

// ResponseKind defines the kind of response
type ResponseKind string

const (
	KindReport       ResponseKind = "Report"
	KindReportList   ResponseKind = "ReportList"
	KindStored       ResponseKind = "StoredReport"
	KindSampleList   ResponseKind = "SampleList"
	KindAlertList    ResponseKind = "AlertList"
	KindNotifierTest ResponseKind = "NotifierTest"
	KindError        ResponseKind = "Error"
)

// ResponseMetadata provides pagination metadata
type ResponseMetadata struct {
	Total       int                    `json:"total,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
	Offset      int                    `json:"offset,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	RequestID   string                 `json:"request_id,omitempty"`
	Links       map[string]string      `json:"links,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// APIError represents a standardized API error
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Kind       ResponseKind      `json:"kind"`
	APIVersion string            `json:"apiVersion"`
	Metadata   *ResponseMetadata `json:"metadata,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     []APIError        `json:"errors,omitempty"`
}

// QueryParams represents pagination query parameters
type QueryParams struct {
	Limit  int `form:"limit" binding:"min=0,max=1000"`
	Offset int `form:"offset" binding:"min=0"`
}

// AnalyzeRequest is the body of POST /v1/analyze
type AnalyzeRequest struct {
	Samples []core.Sample `json:"samples"`
}
