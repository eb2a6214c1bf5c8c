package handler

import (
	"errors"
	"log/slog"
	"net/http"

	. "storeapi/internal/adapter/http/helper"
	. "storeapi/internal/adapter/http/validation"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/model/response"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/util"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc port.UserService
}

func NewUserHandler(svc port.UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func (h *UserHandler) GetUserData(c *gin.Context) {
	ctx := c.Request.Context()
	email := c.Query("email")

	if email == "" {
		SendBadRequestError(c, "email", "Email is required")
		return
	}

	user, err := h.svc.GetUserData(ctx, email)

	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			SendNotFoundError(c, "Email not found")
			return
		}

		slog.Error("User#GetUserData", "error", err)
		SendInternalError(c, "Error getting user data")
		return
	}

	userResponse := response.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	SendSuccess(c, http.StatusOK, userResponse)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.UpdateUserRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	user, err := h.svc.UpdateUser(ctx, &params)

	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			SendNotFoundError(c, "User not found")
			return
		}

		if errors.Is(err, service.ErrInvalidRole) {
			SendBadRequestError(c, "role", "Invalid role")
			return
		}

		slog.Error("User#UpdateUser", "error", err)
		SendInternalError(c, "Error updating user")
		return
	}

	userResponse := response.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	SendSuccess(c, http.StatusOK, userResponse)
}
