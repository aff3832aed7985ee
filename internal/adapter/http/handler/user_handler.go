package handler

import (
	"net/http"

	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc    port.UserService
	Logger *config.Logger
}

func NewUserHandler(userService port.UserService, logger *config.Logger) *UserHandler {
	return &UserHandler{
		svc:    userService,
		Logger: logger,
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	span := startSpan(c, "handler.user.Me", "Me")
	defer span.End()

	user, err := h.svc.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, span, h.Logger, "Failed to load current user", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	span := startSpan(c, "handler.user.UpdateMe", "UpdateMe")
	defer span.End()

	params, err := util.BindJSON[request.UpdateProfileRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), port.UpdateProfileInput{
		Name:  params.Name,
		Email: params.Email,
	})

	if err != nil {
		fail(c, span, h.Logger, "Failed to update profile", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}
