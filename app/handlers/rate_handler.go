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

// RateAdminHandlerInterface defines the contract for rate admin handlers
type RateAdminHandlerInterface interface {
	ListActiveRates(c fiber.Ctx) error
	UpdateRate(c fiber.Ctx) error
	DeleteRate(c fiber.Ctx) error
	ExportRates(c fiber.Ctx) error
}

// RateAdminHandler handles rate-related HTTP requests
type RateAdminHandler struct {
	rateFlow  businessflow.RateFlow
	validator *validator.Validate
}

func NewRateAdminHandler(rateFlow businessflow.RateFlow) RateAdminHandlerInterface {
	return &RateAdminHandler{
		rateFlow:  rateFlow,
		validator: validator.New(),
	}
}

func (h *RateAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RateAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListActiveRates returns the active rate set filtered for admin
// @Summary List Active Rates
// @Description Retrieve active rates by country, carrier, and weight range
// @Tags Admin Rates
// @Produce json
// @Param country_code query string false "Filter by destination country"
// @Param carrier query string false "Filter by carrier"
// @Param min_weight query number false "Filter weight_tier_kg >= min_weight"
// @Param max_weight query number false "Filter weight_tier_kg <= max_weight"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.APIResponse{data=dto.ListActiveRatesResponse}
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/rates [get]
func (h *RateAdminHandler) ListActiveRates(c fiber.Ctx) error {
	filter, err := h.parseRateFilter(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	resp, err := h.rateFlow.ListActiveRates(h.createRequestContext(c, "/api/v1/admin/rates"), filter, limit, offset)
	if err != nil {
		log.Println("List active rates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list rates", "ADMIN_LIST_RATES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rates retrieved successfully", resp)
}

// UpdateRate applies a direct correction to a rate row
// @Summary Update Rate
// @Description Update price, transit text, or customer visibility of a rate row
// @Tags Admin Rates
// @Accept json
// @Produce json
// @Param id path int true "Rate ID"
// @Param request body dto.UpdateRateRequest true "Update payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateRateResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Rate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/rates/{id} [put]
func (h *RateAdminHandler) UpdateRate(c fiber.Ctx) error {
	rateID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rate ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateRateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}
	req.RateID = rateID

	resp, err := h.rateFlow.UpdateRate(h.createRequestContext(c, "/api/v1/admin/rates/:id"), &req, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsRateRowNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rate row not found", "RATE_NOT_FOUND", nil)
		}
		log.Println("Update rate failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update rate", "ADMIN_UPDATE_RATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rate updated successfully", resp)
}

// DeleteRate removes a rate row
// @Summary Delete Rate
// @Description Delete a rate row; its lane simply loses that tier
// @Tags Admin Rates
// @Produce json
// @Param id path int true "Rate ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteRateResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Rate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/rates/{id} [delete]
func (h *RateAdminHandler) DeleteRate(c fiber.Ctx) error {
	rateID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rate ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	resp, err := h.rateFlow.DeleteRate(h.createRequestContext(c, "/api/v1/admin/rates/:id"), rateID, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsRateRowNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rate row not found", "RATE_NOT_FOUND", nil)
		}
		log.Println("Delete rate failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete rate", "ADMIN_DELETE_RATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rate deleted successfully", resp)
}

// ExportRates downloads the active rate set as an xlsx workbook
// @Summary Export Rates
// @Description Download the active rate set as an xlsx workbook, one sheet per country
// @Tags Admin Rates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param country_code query string false "Filter by destination country"
// @Param carrier query string false "Filter by carrier"
// @Success 200 {file} binary "xlsx workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/rates/export [get]
func (h *RateAdminHandler) ExportRates(c fiber.Ctx) error {
	filter, err := h.parseRateFilter(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}

	workbook, err := h.rateFlow.ExportActiveRates(h.createRequestContextWithTimeout(c, "/api/v1/admin/rates/export", 2*time.Minute), filter)
	if err != nil {
		log.Println("Export rates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export rates", "ADMIN_EXPORT_RATES_FAILED", nil)
	}

	filename := "rates-" + utils.UTCNow().Format("20060102-150405") + ".xlsx"
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(workbook)
}

func (h *RateAdminHandler) parseRateFilter(c fiber.Ctx) (dto.ListActiveRatesFilter, error) {
	var filter dto.ListActiveRatesFilter
	if v := c.Query("country_code"); v != "" {
		filter.CountryCode = &v
	}
	if v := c.Query("carrier"); v != "" {
		filter.Carrier = &v
	}
	if v := c.Query("min_weight"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid min_weight")
		}
		filter.MinWeight = &parsed
	}
	if v := c.Query("max_weight"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid max_weight")
		}
		filter.MaxWeight = &parsed
	}
	return filter, nil
}

func (h *RateAdminHandler) parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *RateAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *RateAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
