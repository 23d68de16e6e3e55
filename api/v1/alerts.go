package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sysdiag/core"
)

// AlertHandler exposes the alert manager of a serving process
type AlertHandler struct {
	app *core.App
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(app *core.App) *AlertHandler {
	return &AlertHandler{app: app}
}

// ListAlerts returns the alerts currently raised, ordered by kind. The list
// is empty when alerting is disabled.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts := make([]core.AlertState, 0)
	if h.app.Alerts != nil {
		alerts = h.app.Alerts.GetActiveAlerts()
	}
	SendSuccess(c, KindAlertList, alerts)
}

// TestNotifier sends a test message through the named notifier
func (h *AlertHandler) TestNotifier(c *gin.Context) {
	if h.app.Alerts == nil {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeInternal, "alerting is disabled", nil)
		return
	}

	name := c.Param("name")
	err := h.app.Alerts.TestNotifier(name)
	switch {
	case errors.Is(err, core.ErrNotifierNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeNotFound, err.Error(), nil)
	case err != nil:
		SendError(c, http.StatusBadGateway, ErrorCodeNotifier, err.Error(),
			map[string]interface{}{"notifier": name})
	default:
		SendSuccess(c, KindNotifierTest, gin.H{"notifier": name, "sent": true})
	}
}
