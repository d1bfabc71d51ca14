package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/SimbaKVis/backend-main/config"
	"github.com/SimbaKVis/backend-main/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "shift-scheduler",
		AccessTokenTTL: time.Hour,
	})
}

// echoCaller 返回中间件注入的 user_id / role
func echoCaller(c *gin.Context) {
	c.String(http.StatusOK, "%s|%s|%s", c.GetString(CtxUserID), c.GetString(CtxRole), c.GetString(CtxTokenJTI))
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	token, err := mgr.GenerateAccessToken("user-1", "a@example.com", "Agent")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"无效 token", "Bearer invalid.token.value", http.StatusUnauthorized},
		{"有效 token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", JWTAuth(mgr, nil), echoCaller)

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && !strings.HasPrefix(w.Body.String(), "user-1|Agent|") {
				t.Errorf("上下文注入不符: %s", w.Body.String())
			}
		})
	}
}

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"Admin 放行", "Admin", http.StatusOK},
		{"Agent 拒绝", "Agent", http.StatusForbidden},
		{"未认证", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", func(c *gin.Context) {
				if tt.role != "" {
					c.Set(CtxRole, tt.role)
				}
				c.Next()
			}, RoleAuth("Admin"), echoCaller)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestSelfOrRole(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		path       string
		wantStatus int
	}{
		{"本人", "u1", "Agent", "/users/u1", http.StatusOK},
		{"他人", "u1", "Agent", "/users/u2", http.StatusForbidden},
		{"管理员", "admin", "Admin", "/users/u2", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/users/:userid", func(c *gin.Context) {
				c.Set(CtxUserID, tt.userID)
				c.Set(CtxRole, tt.role)
				c.Next()
			}, SelfOrRole("userid", "Admin"), echoCaller)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRateLimit_WithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("未配置 Redis 时应放行，第 %d 次返回 %d", i+1, w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	// 沿用调用方传入的 ID
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用传入的 Request-ID，实际 %q", w.Header().Get("X-Request-ID"))
	}

	// 超长时重新生成
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("应生成 UUID，实际 %q", got)
	}

	// 含控制字符时重新生成
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc\tforged=1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("非法字符应触发重新生成，实际 %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/auth/me", ok)
	r.GET("/health", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/auth/me", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("/api 响应应禁止缓存，实际 %q", got)
	}
	if got := w.Header().Get("Content-Security-Policy"); got != "default-src 'none'; frame-ancestors 'none'" {
		t.Errorf("CSP 不符: %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Errorf("/health 不应设置 Cache-Control，实际 %q", got)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("缺少 X-Content-Type-Options")
	}
}

func TestMetrics_RecordsRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))

	r := gin.New()
	r.Use(Metrics())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")); after != before+1 {
		t.Errorf("计数应加 1，实际 %v -> %v", before, after)
	}
}
