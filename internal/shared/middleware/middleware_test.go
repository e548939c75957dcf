package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAdminAuth(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	adminToken, _, err := manager.GenerateAccessToken("admin", jwt.RoleAdmin)
	require.NoError(t, err)
	viewerToken, _, err := manager.GenerateAccessToken("someone", "viewer")
	require.NoError(t, err)
	foreignToken, _, err := jwt.NewManager("other", time.Hour).GenerateAccessToken("admin", jwt.RoleAdmin)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", append(AdminAuth(manager), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeySubject))
	})...)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "bad signature", header: "Bearer " + foreignToken, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "not admin", header: "Bearer " + viewerToken, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "admin", header: "Bearer " + adminToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
			} else {
				assert.Equal(t, "admin", rec.Body.String())
			}
		})
	}
}

func TestRecoveryAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodePanic, errorCode(t, rec))
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
}

func TestRequestID_Generated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(60, 2)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(ClientIP(false))
	r.POST("/contact", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusAccepted, call("192.0.2.1:1000"))
	assert.Equal(t, http.StatusAccepted, call("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1:1002"))
	// other clients have their own bucket
	assert.Equal(t, http.StatusAccepted, call("192.0.2.2:1000"))

	// one token per second refills
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusAccepted, call("192.0.2.1:1003"))
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(60, 1)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(limiter.ttl + time.Second)
	limiter.Allow("b")

	assert.NotContains(t, limiter.visitors, "a")
	assert.Contains(t, limiter.visitors, "b")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
