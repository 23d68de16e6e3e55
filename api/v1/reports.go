package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sysdiag/core"
)

const defaultReportLimit = 20

// ReportHandler serves the report archive
type ReportHandler struct {
	app *core.App
}

// NewReportHandler creates a new report handler
func NewReportHandler(app *core.App) *ReportHandler {
	return &ReportHandler{app: app}
}

// ListReports returns archived report headers, newest first
func (h *ReportHandler) ListReports(c *gin.Context) {
	if h.app.Store == nil {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeInternal, "report archive is disabled", nil)
		return
	}

	var params QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		SendBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if params.Limit == 0 {
		params.Limit = defaultReportLimit
	}

	headers, total, err := h.app.Store.List(params.Limit, params.Offset)
	if err != nil {
		SendInternalServerError(c, err)
		return
	}
	SendPaginated(c, KindReportList, headers, total, params)
}

// GetReport returns one archived report
func (h *ReportHandler) GetReport(c *gin.Context) {
	if h.app.Store == nil {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeInternal, "report archive is disabled", nil)
		return
	}

	id := c.Param("id")
	stored, err := h.app.Store.Get(id)
	if errors.Is(err, core.ErrReportNotFound) {
		SendError(c, http.StatusNotFound, ErrorCodeReportNotFound, "report with id "+id+" not found", nil)
		return
	}
	if err != nil {
		SendInternalServerError(c, err)
		return
	}
	SendSuccess(c, KindStored, stored)
}
