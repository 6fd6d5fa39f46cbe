package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func requestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "forwarded-for takes the first hop",
			remoteAddr: "10.0.0.5:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:       "203.0.113.9",
		},
		{
			name:       "single forwarded-for entry",
			remoteAddr: "10.0.0.5:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "real-ip when no forwarded-for",
			remoteAddr: "10.0.0.5:4321",
			headers:    map[string]string{"X-Real-IP": " 198.51.100.7 "},
			want:       "198.51.100.7",
		},
		{
			name:       "remote addr strips the port",
			remoteAddr: "192.0.2.44:5050",
			want:       "192.0.2.44",
		},
		{
			name:       "remote addr without a port passes through",
			remoteAddr: "192.0.2.44",
			want:       "192.0.2.44",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := requestContext(tt.remoteAddr, tt.headers)
			assert.Equal(t, tt.want, clientIP(c))
		})
	}
}

func TestRateLimitMiddlewareBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	var last int
	for i := 0; i < 11; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.77:1000"
		router.ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
