package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sysdiag/core"
)

func newTestEngine(t *testing.T, store core.ReportStore) (*gin.Engine, *core.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := core.NewApp(core.GetDefaultConfig(), nil, store, nil)
	require.NoError(t, err)

	engine := gin.New()
	require.NoError(t, SetupWebRoutes(engine, app))
	return engine, app
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveReport_Empty(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	w := get(engine, "/report/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No samples collected yet")
}

func TestLiveReport(t *testing.T) {
	engine, app := newTestEngine(t, nil)
	start := time.Now()
	for i, cpu := range []float64{20, 30, 97} {
		app.Window.Append(core.Sample{
			Timestamp:     start.Add(time.Duration(i) * time.Second),
			CPUPercent:    cpu,
			MemoryPercent: 50,
			Processes:     []core.ProcessSample{{Name: "ffmpeg", CPUPercent: 88}},
		})
	}

	w := get(engine, "/report/live")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "90/100")
	assert.Contains(t, body, "CPU usage critical")
	assert.Contains(t, body, "ffmpeg")
	assert.Contains(t, body, "http-equiv=\"refresh\"")
}

func TestArchivedReport(t *testing.T) {
	store := core.NewMemoryStorage()
	engine, app := newTestEngine(t, store)
	app.Window.Append(core.Sample{Timestamp: time.Now(), CPUPercent: 10, MemoryPercent: 10})

	_, id, err := app.AnalyzeAndArchive()
	require.NoError(t, err)

	w := get(engine, "/report/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
	assert.Contains(t, w.Body.String(), "100/100")

	w = get(engine, "/report/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "was not found")
}

func TestArchivedReport_ArchiveDisabled(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	w := get(engine, "/report/abc")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
