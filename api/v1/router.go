package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sysdiag/core"
)

// Router sets up the API v1 routes
type Router struct {
	analysisHandler *AnalysisHandler
	sampleHandler   *SampleHandler
	reportHandler   *ReportHandler
	alertHandler    *AlertHandler
	limiter         *RateLimiter
	log             logrus.FieldLogger
}

// NewRouter creates the v1 handlers. A zero config.RateLimit disables rate
// limiting.
func NewRouter(app *core.App, config core.WebConfig, logger logrus.FieldLogger) *Router {
	r := &Router{
		analysisHandler: NewAnalysisHandler(app),
		sampleHandler:   NewSampleHandler(app),
		reportHandler:   NewReportHandler(app),
		alertHandler:    NewAlertHandler(app),
		log:             logger,
	}
	if config.RateLimit > 0 {
		r.limiter = NewRateLimiter(config.RateLimit, config.RateBurst)
	}
	return r
}

// Register mounts the /v1 routes on engine
func (r *Router) Register(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	v1.Use(SecurityHeadersMiddleware())
	v1.Use(ContentTypeMiddleware())
	if r.limiter != nil {
		v1.Use(r.limiter.Middleware())
	}

	v1.POST("/analyze", r.analysisHandler.Analyze)
	v1.GET("/analysis/live", r.analysisHandler.Live)

	v1.GET("/samples", r.sampleHandler.ListSamples)

	reports := v1.Group("/reports")
	{
		reports.GET("", r.reportHandler.ListReports)
		reports.GET("/:id", r.reportHandler.GetReport)
	}

	alerts := v1.Group("/alerts")
	{
		alerts.GET("", r.alertHandler.ListAlerts)
		alerts.POST("/notifiers/:name/test", r.alertHandler.TestNotifier)
	}
}
