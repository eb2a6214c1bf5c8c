package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	. "storeapi/internal/adapter/http/helper"
	"storeapi/internal/adapter/http/middleware"
	. "storeapi/internal/adapter/http/validation"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/model/response"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/util"
	"storeapi/pkg/config"
	. "storeapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AddressHandler struct {
	svc    port.AddressService
	Logger *config.LokiLogger
}

func NewAddressHandler(svc port.AddressService, logger *config.LokiLogger) *AddressHandler {
	return &AddressHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (h *AddressHandler) GetUserAddresses(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.address.GetUserAddresses", []attribute.KeyValue{
		attribute.String("handler.operation", "GetUserAddresses"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	userID := currentUserID(c)

	span.SetAttributes(attribute.Int("user.id", userID))

	addresses, err := h.svc.GetUserAddresses(ctx, userID)

	if err != nil {
		AddSpanError(span, err)

		if h.Logger != nil {
			h.Logger.Logger.Ctx(ctx).Error("Failed to get addresses",
				zap.Error(err),
				zap.Int("user_id", userID),
			)
		}

		SendInternalError(c, "Error getting addresses")
		return
	}

	data := make([]response.AddressResponse, 0, len(addresses))

	for _, address := range addresses {
		data = append(data, toAddressResponse(address))
	}

	span.SetAttributes(attribute.Int("address.count", len(data)))

	SendSuccess(c, http.StatusOK, data)
}

func (h *AddressHandler) GetAddress(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	addressID, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendBadRequestError(c, "id", "Invalid address id")
		return
	}

	address, err := h.svc.GetAddress(ctx, userID, addressID)

	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			SendNotFoundError(c, "Address not found")
			return
		}

		slog.Error("Address#GetAddress", "error", err)
		SendInternalError(c, "Error getting address")
		return
	}

	SendSuccess(c, http.StatusOK, toAddressResponse(address))
}

func (h *AddressHandler) AddAddress(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	params, err := util.ParamsToMap[request.AddressRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	address, err := h.svc.AddAddress(ctx, userID, &params)

	if err != nil {
		slog.Error("Address#AddAddress", "error", err)
		SendInternalError(c, "Error creating address")
		return
	}

	SendSuccess(c, http.StatusCreated, toAddressResponse(address))
}

func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	addressID, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendBadRequestError(c, "id", "Invalid address id")
		return
	}

	params, err := util.ParamsToMap[request.AddressRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	address, err := h.svc.UpdateAddress(ctx, userID, addressID, &params)

	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			SendNotFoundError(c, "Address not found")
			return
		}

		slog.Error("Address#UpdateAddress", "error", err)
		SendInternalError(c, "Error updating address")
		return
	}

	SendSuccess(c, http.StatusOK, toAddressResponse(address))
}

func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	addressID, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendBadRequestError(c, "id", "Invalid address id")
		return
	}

	if err := h.svc.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			SendNotFoundError(c, "Address not found")
			return
		}

		slog.Error("Address#DeleteAddress", "error", err)
		SendInternalError(c, "Error deleting address")
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Address deleted successfully")
}

func currentUserID(c *gin.Context) int {
	if identity, ok := middleware.GetIdentity(c); ok {
		return identity.UserID
	}

	return c.GetInt(middleware.UserIDKey)
}
