// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/app/middleware"
	businessflow "github.com/simurgh-post/simurgh/business_flow"
	"github.com/simurgh-post/simurgh/utils"
)

// ServiceSettingAdminHandlerInterface defines the contract for service setting admin handlers
type ServiceSettingAdminHandlerInterface interface {
	ListSettings(c fiber.Ctx) error
	CreateSetting(c fiber.Ctx) error
	UpdateSetting(c fiber.Ctx) error
	DeleteSetting(c fiber.Ctx) error
}

// ServiceSettingAdminHandler handles service setting HTTP requests
type ServiceSettingAdminHandler struct {
	settingFlow businessflow.ServiceSettingFlow
	validator   *validator.Validate
}

func NewServiceSettingAdminHandler(settingFlow businessflow.ServiceSettingFlow) ServiceSettingAdminHandlerInterface {
	return &ServiceSettingAdminHandler{
		settingFlow: settingFlow,
		validator:   validator.New(),
	}
}

func (h *ServiceSettingAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ServiceSettingAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListSettings returns all service settings including inactive ones
// @Summary List Service Settings (admin)
// @Description Retrieve all carrier/service pairs with visibility and ordering
// @Tags Admin Service Settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListServiceSettingsResponse}
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/service-settings [get]
func (h *ServiceSettingAdminHandler) ListSettings(c fiber.Ctx) error {
	resp, err := h.settingFlow.ListSettings(h.createRequestContext(c, "/api/v1/admin/service-settings"), false)
	if err != nil {
		log.Println("List service settings failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list service settings", "LIST_SERVICE_SETTINGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Service settings retrieved successfully", resp)
}

// CreateSetting registers a new carrier/service pair
// @Summary Create Service Setting
// @Description Register a carrier/service pair for quote visibility
// @Tags Admin Service Settings
// @Accept json
// @Produce json
// @Param request body dto.CreateServiceSettingRequest true "Setting payload"
// @Success 201 {object} dto.APIResponse{data=dto.ServiceSettingResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Setting already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/service-settings [post]
func (h *ServiceSettingAdminHandler) CreateSetting(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateServiceSettingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	resp, err := h.settingFlow.CreateSetting(h.createRequestContext(c, "/api/v1/admin/service-settings"), &req, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsServiceSettingExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Setting already exists for this carrier and service", "SERVICE_SETTING_EXISTS", nil)
		}
		log.Println("Create service setting failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create service setting", "CREATE_SERVICE_SETTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Service setting created successfully", resp)
}

// UpdateSetting changes display name, visibility, or sort order
// @Summary Update Service Setting
// @Description Update display name, visibility, or sort order of a carrier/service pair
// @Tags Admin Service Settings
// @Accept json
// @Produce json
// @Param id path int true "Setting ID"
// @Param request body dto.UpdateServiceSettingRequest true "Update payload"
// @Success 200 {object} dto.APIResponse{data=dto.ServiceSettingResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Setting not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/service-settings/{id} [put]
func (h *ServiceSettingAdminHandler) UpdateSetting(c fiber.Ctx) error {
	settingID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid setting ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateServiceSettingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.SettingID = settingID

	resp, err := h.settingFlow.UpdateSetting(h.createRequestContext(c, "/api/v1/admin/service-settings/:id"), &req, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsServiceSettingNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Service setting not found", "SERVICE_SETTING_NOT_FOUND", nil)
		}
		log.Println("Update service setting failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update service setting", "UPDATE_SERVICE_SETTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Service setting updated successfully", resp)
}

// DeleteSetting removes a carrier/service pair
// @Summary Delete Service Setting
// @Description Remove a carrier/service pair; its rates stop appearing in quotes
// @Tags Admin Service Settings
// @Produce json
// @Param id path int true "Setting ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Setting not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/service-settings/{id} [delete]
func (h *ServiceSettingAdminHandler) DeleteSetting(c fiber.Ctx) error {
	settingID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid setting ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.settingFlow.DeleteSetting(h.createRequestContext(c, "/api/v1/admin/service-settings/:id"), settingID, adminID, buildClientMetadata(c)); err != nil {
		if businessflow.IsServiceSettingNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Service setting not found", "SERVICE_SETTING_NOT_FOUND", nil)
		}
		log.Println("Delete service setting failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete service setting", "DELETE_SERVICE_SETTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Service setting deleted successfully", nil)
}

func (h *ServiceSettingAdminHandler) parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ServiceSettingAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *ServiceSettingAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
