package handler

import (
	"errors"
	"log/slog"
	"net/http"

	. "storeapi/internal/adapter/http/helper"
	"storeapi/internal/adapter/http/middleware"
	. "storeapi/internal/adapter/http/validation"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/model/response"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/util"
	"storeapi/pkg/token"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc     port.AuthService
	access  *token.AccessIssuer
	refresh *token.RefreshIssuer
}

func NewAuthHandler(svc port.AuthService, access *token.AccessIssuer, refresh *token.RefreshIssuer) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		access:  access,
		refresh: refresh,
	}
}

func (a *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.RegisterRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	user, err := a.svc.Registration(ctx, &params)

	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			SendBadRequestError(c, "email", "Email is already taken")
			return
		}

		slog.Error("Auth#Register", "error", err)
		SendInternalError(c, "Error registering user")
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

	SendSuccess(c, http.StatusCreated, userResponse)
}

func (a *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.LoginRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	result, err := a.svc.Login(ctx, &params)

	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			SendNotFoundError(c, "Email not found")
			return
		}

		if errors.Is(err, service.ErrWrongPassword) {
			SendBadRequestError(c, "password", "Wrong password")
			return
		}

		slog.Error("Auth#Login", "error", err)
		SendInternalError(c, "Error logging in")
		return
	}

	token.SetCookie(c.Writer, token.AccessTokenCookie, result.AccessToken, a.access.CookieOptions(false))
	token.SetCookie(c.Writer, token.RefreshTokenCookie, result.RefreshToken, a.refresh.CookieOptions(false))

	userResponse := response.UserResponse{
		ID:        result.User.ID,
		FirstName: result.User.FirstName,
		LastName:  result.User.LastName,
		Email:     result.User.Email,
		Role:      string(result.User.Role),
		CreatedAt: result.User.CreatedAt,
		UpdatedAt: result.User.UpdatedAt,
	}

	SendSuccess(c, http.StatusOK, userResponse, "Logged in successfully")
}

// Logout clears both cookies even when the caller's identity could not be
// resolved, so a browser holding stale tokens always ends up signed out.
func (a *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if identity, ok := middleware.GetIdentity(c); ok {
		if err := a.svc.Logout(ctx, identity.UserID); err != nil {
			slog.Error("Auth#Logout", "error", err, "user_id", identity.UserID)
			SendInternalError(c, "Error logging out")
			return
		}
	}

	token.SetCookie(c.Writer, token.AccessTokenCookie, "", a.access.CookieOptions(true))
	token.SetCookie(c.Writer, token.RefreshTokenCookie, "", a.refresh.CookieOptions(true))

	SendSuccess(c, http.StatusOK, nil, "Logged out successfully")
}

func (a *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.ResetPasswordRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if err := a.svc.RequestPasswordReset(ctx, params.Email); err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			SendBadRequestError(c, "email", "Email not found")
			return
		}

		slog.Error("Auth#ResetPassword", "error", err)
		SendInternalError(c, "Error sending reset email")
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Reset link sent")
}

func (a *AuthHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()
	resetToken := c.Param("token")

	params, err := util.ParamsToMap[request.ChangePasswordRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if err := a.svc.ChangePassword(ctx, resetToken, params.Password); err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			SendBadRequestError(c, "email", "Email not found")
			return
		}

		if errors.Is(err, token.ErrExpired) {
			SendUnauthorizedError(c, "Token has expired")
			return
		}

		slog.Error("Auth#ChangePassword", "error", err)
		SendUnauthorizedError(c, "Invalid token")
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Password changed successfully")
}
