package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sysdiag/core"
)

// maxAnalyzeBody bounds the JSON body of POST /v1/analyze
const maxAnalyzeBody = 32 << 20

// AnalysisHandler runs the analyzer on request
type AnalysisHandler struct {
	app *core.App
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(app *core.App) *AnalysisHandler {
	return &AnalysisHandler{app: app}
}

// Analyze diagnoses the samples posted in the request body
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAnalyzeBody)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil)
			return
		}
		SendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if limit := h.app.Config.Collector.WindowSize; limit > 0 && len(req.Samples) > limit {
		SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge,
			fmt.Sprintf("Too many samples: %d (max %d)", len(req.Samples), limit),
			map[string]interface{}{"max_samples": limit})
		return
	}

	report, err := h.app.Analyzer.Analyze(req.Samples)
	if err != nil {
		sendAnalysisError(c, err)
		return
	}
	SendSuccess(c, KindReport, report)
}

// Live diagnoses a snapshot of the server's live sample window
func (h *AnalysisHandler) Live(c *gin.Context) {
	report, err := h.app.AnalyzeWindow()
	if err != nil {
		sendAnalysisError(c, err)
		return
	}
	SendSuccess(c, KindReport, report)
}

func sendAnalysisError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrNoData) {
		SendError(c, http.StatusUnprocessableEntity, ErrorCodeNoData, err.Error(), nil)
		return
	}
	SendInternalServerError(c, err)
}
