package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-shop/internal/auth"
	"go-shop/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewJWTService("test-secret", time.Hour)
	r := gin.New()
	guard := auth.NewGuard(tokens)
	r.GET("/me", RequireAuth(guard), func(c *gin.Context) {
		id, _ := CurrentUser(c)
		c.JSON(http.StatusOK, id)
	})
	r.GET("/admin", RequireAuth(guard), RequireRole(guard, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, _, err := tokens.Issue(models.Identity{UserID: 3, Email: "ana@x.com", Role: models.RoleCustomer})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path   string
		header string
		want   int
	}{
		{"/me", "", http.StatusUnauthorized},
		{"/me", "Bearer garbage", http.StatusUnauthorized},
		{"/me", "Bearer " + token, http.StatusOK},
		{"/me", token, http.StatusOK},
		{"/admin", "Bearer " + token, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s with %.12q: status = %d, want %d", tc.path, tc.header, w.Code, tc.want)
		}
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("missing request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d", len(entries))
	}
	fields := entries[1].ContextMap()
	if fields["request_id"] != "abc-123" || fields["path"] != "/ping" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestLoggerRecordsUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/me", func(c *gin.Context) {
		c.Set(identityKey, models.Identity{UserID: 3, Role: models.RoleCustomer})
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["user"]; got != "3/customer" {
		t.Fatalf("user = %v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}
