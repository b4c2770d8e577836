// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/app/middleware"
	businessflow "github.com/simurgh-post/simurgh/business_flow"
	"github.com/simurgh-post/simurgh/utils"
)

// QuoteHandlerInterface defines the contract for quote handlers
type QuoteHandlerInterface interface {
	ComputeQuote(c fiber.Ctx) error
	ListServiceSettings(c fiber.Ctx) error
}

// QuoteHandler handles public quote-related HTTP requests
type QuoteHandler struct {
	quoteFlow   businessflow.QuoteFlow
	settingFlow businessflow.ServiceSettingFlow
	validator   *validator.Validate
}

func NewQuoteHandler(quoteFlow businessflow.QuoteFlow, settingFlow businessflow.ServiceSettingFlow) QuoteHandlerInterface {
	return &QuoteHandler{
		quoteFlow:   quoteFlow,
		settingFlow: settingFlow,
		validator:   validator.New(),
	}
}

func (h *QuoteHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QuoteHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ComputeQuote computes shipping offers for a parcel
// @Summary Compute Quote
// @Description Compute shipping offers for a destination and parcel dimensions, with optional duty estimation
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.ComputeQuoteRequest true "Quote payload"
// @Success 200 {object} dto.APIResponse{data=dto.ComputeQuoteResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) ComputeQuote(c fiber.Ctx) error {
	var req dto.ComputeQuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	resp, err := h.quoteFlow.ComputeQuote(h.createRequestContext(c, "/api/v1/quotes"), &req)
	if err != nil {
		log.Println("Compute quote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute quote", "COMPUTE_QUOTE_FAILED", nil)
	}

	middleware.ObserveQuoteOutcome(len(resp.Offers) > 0)

	return h.SuccessResponse(c, fiber.StatusOK, "Quote computed successfully", resp)
}

// ListServiceSettings returns the customer-visible services in display order
// @Summary List Service Settings
// @Description Retrieve the active carrier/service pairs shown on the quote page
// @Tags Quotes
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListServiceSettingsResponse}
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/service-settings [get]
func (h *QuoteHandler) ListServiceSettings(c fiber.Ctx) error {
	resp, err := h.settingFlow.ListSettings(h.createRequestContext(c, "/api/v1/service-settings"), true)
	if err != nil {
		log.Println("List service settings failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list service settings", "LIST_SERVICE_SETTINGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Service settings retrieved successfully", resp)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *QuoteHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *QuoteHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
