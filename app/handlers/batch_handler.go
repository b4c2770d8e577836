// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"io"
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

// BatchAdminHandlerInterface defines the contract for batch admin handlers
type BatchAdminHandlerInterface interface {
	IngestBatch(c fiber.Ctx) error
	ImportWorkbook(c fiber.Ctx) error
	ListBatches(c fiber.Ctx) error
	GetBatchRows(c fiber.Ctx) error
	ApproveBatch(c fiber.Ctx) error
	RejectBatch(c fiber.Ctx) error
}

// BatchAdminHandler handles batch-related HTTP requests
type BatchAdminHandler struct {
	ingestionFlow businessflow.IngestionFlow
	approvalFlow  businessflow.ApprovalFlow
	validator     *validator.Validate
}

func NewBatchAdminHandler(ingestionFlow businessflow.IngestionFlow, approvalFlow businessflow.ApprovalFlow) BatchAdminHandlerInterface {
	return &BatchAdminHandler{
		ingestionFlow: ingestionFlow,
		approvalFlow:  approvalFlow,
		validator:     validator.New(),
	}
}

func (h *BatchAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BatchAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// IngestBatch stages a scraped rate sheet for review
// @Summary Ingest Batch
// @Description Submit a scraped set of rate rows; the whole submission is staged or rejected as a unit
// @Tags Admin Batches
// @Accept json
// @Produce json
// @Param request body dto.IngestBatchRequest true "Ingestion payload"
// @Success 201 {object} dto.APIResponse{data=dto.IngestBatchResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 422 {object} dto.APIResponse "Row validation failure"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches/ingest [post]
func (h *BatchAdminHandler) IngestBatch(c fiber.Ctx) error {
	var req dto.IngestBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	resp, err := h.ingestionFlow.IngestBatch(h.createRequestContext(c, "/api/v1/admin/batches/ingest"), &req, buildClientMetadata(c))
	if err != nil {
		var rowErr *businessflow.RowValidationError
		if errors.As(err, &rowErr) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Submission rejected", "ROW_VALIDATION_FAILED", rowErr.Issues)
		}
		log.Println("Ingest batch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to stage batch", "INGEST_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Batch staged for review", resp)
}

// ImportWorkbook stages an uploaded xlsx rate sheet for review
// @Summary Import Workbook
// @Description Upload an xlsx rate sheet; rows are parsed and staged through the same validation as JSON ingestion
// @Tags Admin Batches
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Param source formData string true "Where the sheet came from"
// @Success 201 {object} dto.APIResponse{data=dto.IngestBatchResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 422 {object} dto.APIResponse "Row validation failure"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches/import [post]
func (h *BatchAdminHandler) ImportWorkbook(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Workbook file is required", "INVALID_REQUEST", nil)
	}
	source := c.FormValue("source")
	if source == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "source is required", "INVALID_REQUEST", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to open uploaded file", "INVALID_REQUEST", nil)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "INVALID_REQUEST", nil)
	}

	resp, err := h.ingestionFlow.IngestFromWorkbook(h.createRequestContext(c, "/api/v1/admin/batches/import"), content, source, buildClientMetadata(c))
	if err != nil {
		var rowErr *businessflow.RowValidationError
		if errors.As(err, &rowErr) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Submission rejected", "ROW_VALIDATION_FAILED", rowErr.Issues)
		}
		log.Println("Import workbook failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import workbook", "INGEST_WORKBOOK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Batch staged for review", resp)
}

// ListBatches returns batches filtered for admin
// @Summary List Batches
// @Description Retrieve batches by status, source, start date, and end date
// @Tags Admin Batches
// @Produce json
// @Param status query string false "Filter by status (pending|approved|rejected)"
// @Param source query string false "Filter by source"
// @Param start_date query string false "Filter created_at >= start_date (RFC3339)"
// @Param end_date query string false "Filter created_at <= end_date (RFC3339)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListBatchesResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches [get]
func (h *BatchAdminHandler) ListBatches(c fiber.Ctx) error {
	status := c.Query("status")
	source := c.Query("source")
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	var filter dto.AdminListBatchesFilter
	if status != "" {
		filter.Status = &status
	}
	if source != "" {
		filter.Source = &source
	}
	if startStr != "" {
		if t, err := time.Parse(time.RFC3339, startStr); err == nil {
			filter.StartDate = &t
		} else {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start_date format", "INVALID_DATE", nil)
		}
	}
	if endStr != "" {
		if t, err := time.Parse(time.RFC3339, endStr); err == nil {
			filter.EndDate = &t
		} else {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end_date format", "INVALID_DATE", nil)
		}
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	resp, err := h.approvalFlow.ListBatches(h.createRequestContext(c, "/api/v1/admin/batches"), filter, limit, offset)
	if err != nil {
		log.Println("List batches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list batches", "ADMIN_LIST_BATCHES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batches retrieved successfully", resp)
}

// GetBatchRows returns the staged rows of a batch
// @Summary Get Batch Rows
// @Description Retrieve the rate rows staged under one batch for review
// @Tags Admin Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} dto.APIResponse{data=dto.BatchRowsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches/{id}/rows [get]
func (h *BatchAdminHandler) GetBatchRows(c fiber.Ctx) error {
	batchID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_REQUEST", nil)
	}

	resp, err := h.approvalFlow.GetBatchRows(h.createRequestContext(c, "/api/v1/admin/batches/:id/rows"), batchID)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		log.Println("Get batch rows failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get batch rows", "ADMIN_GET_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch rows retrieved successfully", resp)
}

// ApproveBatch promotes a pending batch's rows to active rates
// @Summary Approve Batch
// @Description Promote a pending batch; colliding active rates are replaced or skipped depending on replace_existing
// @Tags Admin Batches
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param request body dto.ApproveBatchRequest true "Approval payload"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveBatchResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 409 {object} dto.APIResponse "Already processed or concurrent promotion"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches/{id}/approve [post]
func (h *BatchAdminHandler) ApproveBatch(c fiber.Ctx) error {
	batchID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ApproveBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.BatchID = batchID

	resp, err := h.approvalFlow.ApproveBatch(h.createRequestContext(c, "/api/v1/admin/batches/:id/approve"), &req, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsBatchAlreadyProcessed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch has already been processed", "BATCH_ALREADY_PROCESSED", nil)
		}
		if businessflow.IsActiveRateConflict(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A concurrent promotion activated one of these rates first", "ACTIVE_RATE_CONFLICT", nil)
		}
		log.Println("Approve batch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to approve batch", "ADMIN_APPROVE_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch approved successfully", resp)
}

// RejectBatch rejects a pending batch with a reason
// @Summary Reject Batch
// @Description Reject a pending batch; its staged rows stay pending but can never be promoted
// @Tags Admin Batches
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param request body dto.RejectBatchRequest true "Rejection payload"
// @Success 200 {object} dto.APIResponse{data=dto.RejectBatchResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 409 {object} dto.APIResponse "Already processed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/batches/{id}/reject [post]
func (h *BatchAdminHandler) RejectBatch(c fiber.Ctx) error {
	batchID, err := h.parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.RejectBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}
	req.BatchID = batchID

	resp, err := h.approvalFlow.RejectBatch(h.createRequestContext(c, "/api/v1/admin/batches/:id/reject"), &req, adminID, buildClientMetadata(c))
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsBatchAlreadyProcessed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch has already been processed", "BATCH_ALREADY_PROCESSED", nil)
		}
		if businessflow.IsRejectReasonRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Rejection reason is required", "REJECT_REASON_REQUIRED", nil)
		}
		log.Println("Reject batch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reject batch", "ADMIN_REJECT_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch rejected successfully", resp)
}

func (h *BatchAdminHandler) parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *BatchAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *BatchAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
