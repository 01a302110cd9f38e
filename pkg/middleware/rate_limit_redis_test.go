package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWindow(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	now := at
	windowNow = func() time.Time { return now }
	t.Cleanup(func() { windowNow = time.Now })
	return &now
}

// asPublisher stands in for AuthMiddleware by setting the me claim from
// the X-Me header.
func asPublisher(c *gin.Context) {
	if me := c.GetHeader("X-Me"); me != "" {
		c.Set("claims", map[string]interface{}{"me": me})
	}
	c.Next()
}

func redisLimited(t *testing.T, rps float64, burst int) (*gin.Engine, *mr.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		m.Close()
	})

	r := gin.New()
	r.Use(asPublisher, RedisRateLimitMiddleware(client, rps, burst, time.Second))
	r.POST("/micropub", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	return r, m
}

func post(r *gin.Engine, me string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/micropub", nil)
	if me != "" {
		req.Header.Set("X-Me", me)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRedisRateLimitWindow(t *testing.T) {
	now := fixedWindow(t, time.Unix(1700000000, 0))
	r, _ := redisLimited(t, 1, 0)
	rejected := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis"))

	require.Equal(t, http.StatusAccepted, post(r, "").Code)

	w := post(r, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(w.Body.String(), `"rate_limited"`), w.Body.String())
	assert.Equal(t, rejected+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis")))

	// next window
	*now = now.Add(time.Second)
	assert.Equal(t, http.StatusAccepted, post(r, "").Code)
}

func TestRedisRateLimitPerPublisher(t *testing.T) {
	fixedWindow(t, time.Unix(1700000000, 0))
	r, m := redisLimited(t, 1, 1)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusAccepted, post(r, "https://website.example").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, "https://website.example").Code)
	assert.Equal(t, http.StatusAccepted, post(r, "https://other.example").Code)

	assert.True(t, m.Exists("rl:me:https://website.example:1700000000"))
	assert.True(t, m.Exists("rl:me:https://other.example:1700000000"))
}

func TestRedisRateLimitFailsClosed(t *testing.T) {
	fixedWindow(t, time.Unix(1700000000, 0))
	r, m := redisLimited(t, 1, 0)
	m.SetError("server is down")

	w := post(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "server_error")
}
