package handler

import (
	"net/http"

	. "taskmanager/internal/adapter/http/helper"
	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type AuthHandler struct {
	svc    port.AuthService
	Logger *config.Logger
}

func NewAuthHandler(authService port.AuthService, logger *config.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    authService,
		Logger: logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	span := startSpan(c, "handler.auth.Register", "Register")
	defer span.End()

	params, err := util.BindJSON[request.RegisterRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	result, err := h.svc.Register(c.Request.Context(), port.RegisterInput{
		Email:    params.Email,
		Password: params.Password,
		Name:     params.Name,
	})

	if err != nil {
		fail(c, span, h.Logger, "Failed to register user", err)
		return
	}

	span.SetAttributes(attribute.String("user.id", result.User.ID))

	SendSuccess(c, http.StatusCreated, response.NewAuthResponse(result))
}

func (h *AuthHandler) Login(c *gin.Context) {
	span := startSpan(c, "handler.auth.Login", "Login")
	defer span.End()

	params, err := util.BindJSON[request.LoginRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	result, err := h.svc.Login(c.Request.Context(), port.LoginInput{
		Email:    params.Email,
		Password: params.Password,
	})

	if err != nil {
		fail(c, span, h.Logger, "Failed to login", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewAuthResponse(result))
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	span := startSpan(c, "handler.auth.Refresh", "Refresh")
	defer span.End()

	params, err := util.BindJSON[request.RefreshRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), params.RefreshToken)
	if err != nil {
		fail(c, span, h.Logger, "Failed to refresh tokens", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTokenResponse(tokens))
}
