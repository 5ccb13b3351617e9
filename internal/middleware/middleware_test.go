// internal/middleware/middleware_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/autoimport/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Error)
	assert.False(t, response.Success)
	return response.Error.Code
}

func TestRateLimitPerClientAddress(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rate.Every(time.Hour), 2, ClientIPKey)
	rl.now = func() time.Time { return start }
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:4000", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:4001", nil).Code)

	w := get(r, "10.0.0.1:4002", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, w))
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 3600, retry, 1)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:4000", nil).Code)
}

func TestRateLimitSweepsIdleVisitors(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rate.Every(time.Second), 1, ClientIPKey)
	rl.now = func() time.Time { return now }

	rl.getVisitor("a")
	rl.getVisitor("b")
	assert.Len(t, rl.visitors, 2)

	now = now.Add(5 * time.Minute)
	rl.getVisitor("c")
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "c")
}

func TestRateLimitZeroRateDisables(t *testing.T) {
	r := newEngine(RateLimit(0, 0, ClientIPKey))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, get(r, "10.0.0.1:4000", nil).Code)
	}
}

func TestSubjectKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request.RemoteAddr = "10.1.2.3:5000"

	assert.Equal(t, "ip:10.1.2.3", SubjectKey(c))
	c.Set("subject", "ops")
	assert.Equal(t, "sub:ops", SubjectKey(c))
}

func TestAdminRateLimitFollowsSubject(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	first, err := utils.GenerateAdminToken("first", 1)
	require.NoError(t, err)
	second, err := utils.GenerateAdminToken("second", 1)
	require.NoError(t, err)

	rl := NewRateLimiter(rate.Every(time.Hour), 1, SubjectKey)
	r := newEngine(AdminRequired(), rl.Middleware())

	// the same address, two operators
	bearer := func(token string) map[string]string { return map[string]string{"Authorization": "Bearer " + token} }
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.9:1", bearer(first)).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.9:1", bearer(first)).Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.9:1", bearer(second)).Code)
}

func TestAdminRequiredAnswersWithEnvelope(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := newEngine(I18nMiddleware(), AdminRequired())

	w := get(r, "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = get(r, "10.0.0.1:1", map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	token, err := utils.GenerateAdminToken("ops", 1)
	require.NoError(t, err)
	w = get(r, "10.0.0.1:1", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseAcceptLanguage(t *testing.T) {
	assert.Equal(t, "ro", parseAcceptLanguage("ro-MD,ro;q=0.9,en;q=0.8"))
	assert.Equal(t, "ru", parseAcceptLanguage("ru-RU"))
	assert.Equal(t, "en", parseAcceptLanguage("de-DE,en;q=0.5"))
}
