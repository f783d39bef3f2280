package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyToken(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid")
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/items/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    UserID(c),
			"request_id": c.GetString("request_id"),
			"ip":         c.GetString(CtxRealIPKey),
		})
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"Bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(c), header)
	}
}

func TestJWTAuth(t *testing.T) {
	r := newEngine(JWTAuth(staticVerifier{"good": "user-1"}))

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "No token provided")

	req = httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")

	req = httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(HeaderRequestID, "trace-123")
	w = serve(r, req)
	assert.Equal(t, "trace-123", w.Header().Get(HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"trace-123"`)
}

func TestRealIP(t *testing.T) {
	r := newEngine(RealIP())

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Contains(t, serve(r, req).Body.String(), `"ip":"203.0.113.7"`)

	req = httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Contains(t, serve(r, req).Body.String(), `"ip":"198.51.100.2"`)
}

func TestAccessLog(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := newEngine(RequestIDMiddleware(), RealIP(), AccessLog(logger))

	serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := hook.AllEntries()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, logrus.InfoLevel, entries[0].Level)
		assert.Equal(t, 200, entries[0].Data["status"])
		assert.NotEmpty(t, entries[0].Data["request_id"])
		assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	}
}

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obs = append(o.obs, observation{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	o := &recordingObserver{}
	r := newEngine(Metrics(o))

	serve(r, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []observation{
		{http.MethodGet, "/items/:id", http.StatusOK},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, o.obs)
}
