package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(limits Limits) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limits, true)
	rl.now = clock.now
	return rl, clock
}

func TestMinuteWindowSlides(t *testing.T) {
	rl, clock := newTestLimiter(Limits{PerMinute: 2})

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients are limited independently")

	clock.advance(61 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestHourAndDayWindows(t *testing.T) {
	rl, clock := newTestLimiter(Limits{PerMinute: 10, PerHour: 3, PerDay: 4})

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("a"))
		clock.advance(2 * time.Minute)
	}
	assert.False(t, rl.Allow("a"), "hour window full")

	clock.advance(time.Hour)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "day window full")
}

func TestStats(t *testing.T) {
	rl, clock := newTestLimiter(Limits{PerMinute: 5, PerHour: 0, PerDay: 100})
	rl.Allow("a")
	rl.Allow("a")
	rl.Allow("b")

	s := rl.GetStats("a")
	assert.True(t, s.Enabled)
	assert.Equal(t, 2, s.Clients)
	assert.Equal(t, 2, s.RequestsLastMinute)
	assert.Equal(t, 3, s.RemainingThisMinute)
	assert.Equal(t, -1, s.RemainingThisHour)
	assert.Equal(t, 98, s.RemainingThisDay)

	clock.advance(25 * time.Hour)
	assert.Equal(t, 0, rl.GetStats("a").Clients, "idle clients are pruned")

	rl.Allow("a")
	rl.Reset()
	assert.Equal(t, 0, rl.GetStats("a").RequestsLastDay)
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 1}, false)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("a"))
	}
	assert.False(t, rl.GetStats("a").Enabled)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(Limits{PerMinute: 1})

	r := gin.New()
	r.GET("/ping", Middleware(rl), func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/stats", StatsHandler(rl))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"limit_per_minute":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requests_last_minute":1`)
}
