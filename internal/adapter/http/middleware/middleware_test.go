package middleware

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/config"
	ct "taskmanager/pkg/context"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuthService struct {
	port.AuthService
	tokens map[string]port.TokenClaims
}

func (s stubAuthService) Authenticate(ctx context.Context, token string) (port.TokenClaims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}

	return port.TokenClaims{}, errors.New("invalid token")
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	auth := stubAuthService{tokens: map[string]port.TokenClaims{
		"good": {UserID: "u1", Email: "u1@example.com"},
	}}

	router := gin.New()
	router.Use(CurrentMiddleware(), Authentication(auth))

	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":         CurrentUserID(c),
			"current_user_id": GetCurrent(c).Get(ct.UserIDKey),
		})
	})

	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return router
}

func TestAuthentication(t *testing.T) {
	RegisterTestingT(t)
	router := authRouter()

	cases := []struct {
		name     string
		target   string
		header   string
		expected string
	}{
		{"bearer token", "/whoami", "Bearer good", "u1"},
		{"lowercase scheme", "/whoami", "bearer good", "u1"},
		{"query token", "/whoami?token=good", "", "u1"},
		{"invalid token is anonymous", "/whoami", "Bearer bad", ""},
		{"no token", "/whoami", "", ""},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", tc.target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}

		router.ServeHTTP(w, req)

		body := map[string]string{}
		json.Unmarshal(w.Body.Bytes(), &body)

		Expect(w.Code).To(Equal(http.StatusOK), tc.name)
		Expect(body["user_id"]).To(Equal(tc.expected), tc.name)
		Expect(body["current_user_id"]).To(Equal(tc.expected), tc.name)
	}
}

func TestRequireAuth(t *testing.T) {
	RegisterTestingT(t)
	router := authRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private", nil)
	router.ServeHTTP(w, req)

	var body response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &body)

	Expect(w.Code).To(Equal(http.StatusUnauthorized))
	Expect(body.Error.Code).To(Equal("UNAUTHENTICATED"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusNoContent))
}

func TestCurrentMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CurrentMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ct.GetCurrent(c.Request.Context()).Get(ct.RequestIDKey))
	})

	t.Run("should reuse the incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Body.String())
		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	})

	t.Run("should generate one when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})
}

func TestHTTPSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(enabled bool) *gin.Engine {
		router := gin.New()
		router.Use(HTTPSMiddleware(enabled, zap.NewNop()))
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	serve := func(router *gin.Engine, host string, mutate func(*http.Request)) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health?x=1", nil)
		req.Host = host
		if mutate != nil {
			mutate(req)
		}
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("should redirect plain http", func(t *testing.T) {
		w := serve(newRouter(true), "api.example.com", nil)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://api.example.com/health?x=1", w.Header().Get("Location"))
	})

	t.Run("should trust the forwarded proto", func(t *testing.T) {
		w := serve(newRouter(true), "api.example.com", func(r *http.Request) {
			r.Header.Set("X-Forwarded-Proto", "https")
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should pass tls requests and localhost", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(newRouter(true), "localhost:4000", nil).Code)
		assert.Equal(t, http.StatusOK, serve(newRouter(true), "api.example.com", func(r *http.Request) {
			r.TLS = &tls.ConnectionState{}
		}).Code)
	})

	t.Run("should do nothing when disabled", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(newRouter(false), "api.example.com", nil).Code)
	})
}

func TestRecovery_MasksPanicsInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, masked := range []bool{true, false} {
		router := gin.New()
		router.Use(ErrorMasking(masked), Recovery(config.NewNopLogger()))
		router.GET("/boom", func(c *gin.Context) { panic("database exploded") })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/boom", nil)
		router.ServeHTTP(w, req)

		var body response.ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

		if masked {
			assert.Equal(t, "Internal server error", body.Error.Errors[0].Message)
		} else {
			assert.Equal(t, "database exploded", body.Error.Errors[0].Message)
		}
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"http://app.example.com"}))
	router.GET("/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/tasks", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/tasks", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
