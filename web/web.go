package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sysdiag/core"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler renders analysis reports as HTML
type WebHandler struct {
	app *core.App
}

// NewWebHandler creates a new web handler
func NewWebHandler(app *core.App) *WebHandler {
	return &WebHandler{app: app}
}

// ReportPage is the data passed to report.html
type ReportPage struct {
	Title     string
	ReportID  string
	Live      bool
	Report    *core.AnalysisReport
	Message   string
	Generated time.Time
}

var templateFuncs = template.FuncMap{
	"pct": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"num": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"ts": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"dur": func(d time.Duration) string {
		return d.Round(time.Second).String()
	},
	"healthClass": func(status core.HealthStatus) string {
		switch status {
		case core.HealthGood:
			return "good"
		case core.HealthFair:
			return "fair"
		default:
			return "attention"
		}
	},
}

// SetupWebRoutes configures report page routes
func SetupWebRoutes(router *gin.Engine, app *core.App) error {
	templates, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	handler := NewWebHandler(app)
	router.GET("/report/live", handler.LiveReport)
	router.GET("/report/:id", handler.ArchivedReport)
	return nil
}

// LiveReport analyzes the live window and renders it
func (h *WebHandler) LiveReport(c *gin.Context) {
	page := ReportPage{Title: "Live system diagnosis", Live: true, Generated: time.Now()}

	report, err := h.app.AnalyzeWindow()
	switch {
	case errors.Is(err, core.ErrNoData):
		page.Message = "No samples collected yet. The page fills in once monitoring has run for a few seconds."
	case err != nil:
		page.Message = "Analysis failed: " + err.Error()
		c.HTML(http.StatusInternalServerError, "report.html", page)
		return
	default:
		page.Report = report
	}
	c.HTML(http.StatusOK, "report.html", page)
}

// ArchivedReport renders a report from the archive
func (h *WebHandler) ArchivedReport(c *gin.Context) {
	id := c.Param("id")
	page := ReportPage{Title: "Archived diagnosis", ReportID: id, Generated: time.Now()}

	if h.app.Store == nil {
		page.Message = "The report archive is disabled."
		c.HTML(http.StatusServiceUnavailable, "report.html", page)
		return
	}

	stored, err := h.app.Store.Get(id)
	if errors.Is(err, core.ErrReportNotFound) {
		page.Message = "Report " + id + " was not found."
		c.HTML(http.StatusNotFound, "report.html", page)
		return
	}
	if err != nil {
		page.Message = "Failed to load report: " + err.Error()
		c.HTML(http.StatusInternalServerError, "report.html", page)
		return
	}

	page.Report = stored.Report
	c.HTML(http.StatusOK, "report.html", page)
}
