package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/yourusername/sysdiag/core"
)

const defaultSampleLimit = 100

// SampleHandler exposes the live sample window
type SampleHandler struct {
	app *core.App
}

// NewSampleHandler creates a new sample handler
func NewSampleHandler(app *core.App) *SampleHandler {
	return &SampleHandler{app: app}
}

// ListSamples returns the most recent samples, oldest first
func (h *SampleHandler) ListSamples(c *gin.Context) {
	var params QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		SendBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if params.Limit == 0 {
		params.Limit = defaultSampleLimit
	}

	samples := h.app.Window.Latest(params.Limit)
	SendPaginated(c, KindSampleList, samples, h.app.Window.Len(), QueryParams{Limit: params.Limit})
}
