package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmanager/internal/adapter/database/memory"
	"taskmanager/internal/adapter/events"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/service"
	"taskmanager/pkg/auth"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	Router *gin.Engine
	Broker *events.Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memory.NewDB()
	users := memory.NewUserRepository(db)
	tasks := memory.NewTaskRepository(db)

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	broker := events.NewBroker(events.DefaultBufferSize, nil)
	t.Cleanup(func() { _ = broker.Close() })

	authService := service.NewAuthService(users, auth.NewCredentials(hasher, tokens))
	logger := config.NewNopLogger()

	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler(service.NewUserService(users), logger)
	taskHandler := NewTaskHandler(service.NewTaskService(tasks, broker, nil), logger)

	subscriptionHandler, err := NewSubscriptionHandler(broker, logger, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.CurrentMiddleware(), middleware.Authentication(authService))

	router.GET("/health", NewHealthHandler().Health)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)

	private := router.Group("/", middleware.RequireAuth())
	private.GET("/me", userHandler.Me)
	private.PATCH("/me", userHandler.UpdateMe)
	private.GET("/tasks", taskHandler.List)
	private.POST("/tasks", taskHandler.Create)
	private.GET("/tasks/:id", taskHandler.Get)
	private.PATCH("/tasks/:id", taskHandler.Update)
	private.DELETE("/tasks/:id", taskHandler.Delete)
	private.GET("/subscriptions/tasks", subscriptionHandler.Tasks)

	return &testEnv{Router: router, Broker: broker}
}

// do sends body as JSON; token may be empty.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader

	switch value := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(value))
	default:
		payload, _ := json.Marshal(value)
		reader = bytes.NewReader(payload)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)

	return rr
}

// register returns the access token and user id of a new account.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()

	rr := e.do("POST", "/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body struct {
		Data response.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return body.Data.AccessToken, body.Data.User.ID
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())

	return body.Data
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) response.ResponseError {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())

	return body.Error
}
