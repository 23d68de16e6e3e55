package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	a := rl.limiterFor("10.0.0.1")
	b := rl.limiterFor("10.0.0.2")
	assert.NotSame(t, a, b)
	assert.Same(t, a, rl.limiterFor("10.0.0.1"))

	assert.True(t, a.Allow())
	assert.False(t, a.Allow())
	assert.True(t, b.Allow())
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.limiterFor("10.0.0.1")
	clock = clock.Add(5 * time.Minute)
	rl.limiterFor("10.0.0.2")

	assert.Len(t, rl.visitors, 1)
	_, kept := rl.visitors["10.0.0.2"]
	assert.True(t, kept)
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestNewPaginatedResponse_Links(t *testing.T) {
	resp := NewPaginatedResponse(KindReportList, []string{}, 50, QueryParams{Limit: 10, Offset: 10})

	assert.Equal(t, "?limit=10&offset=0", resp.Metadata.Links["prev"])
	assert.Equal(t, "?limit=10&offset=20", resp.Metadata.Links["next"])
	assert.Equal(t, 50, resp.Metadata.Total)
}
