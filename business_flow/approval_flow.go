// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// ApprovalFlow promotes or rejects pending batches. Promotion and
// supersession of colliding active rows commit atomically: readers observe
// either the full old rate set or the full new one, never a mixture.
type ApprovalFlow interface {
	ListBatches(ctx context.Context, filter dto.AdminListBatchesFilter, limit, offset int) (*dto.AdminListBatchesResponse, error)
	GetBatchRows(ctx context.Context, batchID uint) (*dto.BatchRowsResponse, error)
	ApproveBatch(ctx context.Context, req *dto.ApproveBatchRequest, adminID uint, metadata *ClientMetadata) (*dto.ApproveBatchResponse, error)
	RejectBatch(ctx context.Context, req *dto.RejectBatchRequest, adminID uint, metadata *ClientMetadata) (*dto.RejectBatchResponse, error)
}

// ApprovalFlowImpl implements the approval business flow
type ApprovalFlowImpl struct {
	batchRepo repository.RateBatchRepository
	rowRepo   repository.RateRowRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewApprovalFlow creates a new approval flow instance
func NewApprovalFlow(
	batchRepo repository.RateBatchRepository,
	rowRepo repository.RateRowRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ApprovalFlow {
	return &ApprovalFlowImpl{
		batchRepo: batchRepo,
		rowRepo:   rowRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// ListBatches retrieves batches using optional filters: status, source, start/end dates
func (s *ApprovalFlowImpl) ListBatches(ctx context.Context, filter dto.AdminListBatchesFilter, limit, offset int) (*dto.AdminListBatchesResponse, error) {
	bf := models.RateBatchFilter{}
	if filter.Status != nil && *filter.Status != "" {
		st := models.BatchStatus(*filter.Status)
		if st.Valid() {
			bf.Status = &st
		}
	}
	if filter.Source != nil && *filter.Source != "" {
		bf.Source = filter.Source
	}
	if filter.StartDate != nil {
		bf.CreatedAfter = filter.StartDate
	}
	if filter.EndDate != nil {
		bf.CreatedBefore = filter.EndDate
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, NewBusinessError("ADMIN_LIST_BATCHES_FAILED", "End date must be after start date", ErrStartDateAfterEndDate)
	}

	batches, err := s.batchRepo.ByFilter(ctx, bf, "created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_BATCHES_FAILED", "Failed to list batches", err)
	}

	items := make([]dto.AdminBatchItem, 0, len(batches))
	for _, b := range batches {
		items = append(items, ToBatchItem(*b))
	}

	return &dto.AdminListBatchesResponse{
		Message: "Batches retrieved successfully",
		Items:   items,
	}, nil
}

// GetBatchRows returns the staged rows of a batch for review
func (s *ApprovalFlowImpl) GetBatchRows(ctx context.Context, batchID uint) (*dto.BatchRowsResponse, error) {
	batch, err := s.batchRepo.ByID(ctx, batchID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_GET_BATCH_FAILED", "Failed to get batch", err)
	}
	if batch == nil {
		return nil, NewBusinessError("ADMIN_GET_BATCH_FAILED", "Batch not found", ErrBatchNotFound)
	}

	rows, err := s.rowRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_GET_BATCH_FAILED", "Failed to list batch rows", err)
	}

	items := make([]dto.RateRowDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToRateRowDTO(*r))
	}

	return &dto.BatchRowsResponse{
		Message: "Batch rows retrieved successfully",
		BatchID: batchID,
		Items:   items,
	}, nil
}

// ApproveBatch promotes a pending batch's rows to active. With
// ReplaceExisting, colliding active rows are disabled in the same
// transaction; without it, colliding staged rows are skipped and counted.
// The partial unique index on active keys backstops concurrent promotions:
// the second transaction to commit a duplicate key fails and rolls back.
func (s *ApprovalFlowImpl) ApproveBatch(ctx context.Context, req *dto.ApproveBatchRequest, adminID uint, metadata *ClientMetadata) (*dto.ApproveBatchResponse, error) {
	if req == nil || req.BatchID == 0 {
		return nil, NewBusinessError("ADMIN_APPROVE_BATCH_FAILED", "batch_id is required", nil)
	}

	var approved, skipped int

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		batch, err := s.batchRepo.ByID(txCtx, req.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return ErrBatchNotFound
		}
		if !batch.CanTransitionTo(models.BatchStatusApproved) {
			return ErrBatchAlreadyProcessed
		}

		rows, err := s.rowRepo.ListByBatch(txCtx, req.BatchID)
		if err != nil {
			return err
		}

		staged := make([]*models.RateRow, 0, len(rows))
		for _, r := range rows {
			if r.Status == models.RateRowStatusPending {
				staged = append(staged, r)
			}
		}
		if len(staged) == 0 {
			return ErrBatchEmpty
		}

		var toActivate []uint
		if req.ReplaceExisting {
			keys := make([]models.PromotionKey, 0, len(staged))
			for _, r := range staged {
				keys = append(keys, r.Key())
				toActivate = append(toActivate, r.ID)
			}
			if _, err := s.rowRepo.DisableActiveByKeys(txCtx, keys); err != nil {
				return err
			}
		} else {
			for _, r := range staged {
				exists, err := s.rowRepo.ActiveKeyExists(txCtx, r.Key())
				if err != nil {
					return err
				}
				if exists {
					skipped++
					continue
				}
				toActivate = append(toActivate, r.ID)
			}
		}

		now := utils.UTCNow()
		if len(toActivate) > 0 {
			if err := s.rowRepo.ActivateRows(txCtx, toActivate, adminID, now); err != nil {
				return err
			}
		}
		approved = len(toActivate)

		batch.Status = models.BatchStatusApproved
		batch.ApprovedPrices = &approved
		batch.ProcessedAt = &now
		batch.ProcessedBy = &adminID
		if req.Comment != nil && strings.TrimSpace(*req.Comment) != "" {
			batch.Notes = req.Comment
		}
		if err := s.batchRepo.Update(txCtx, *batch); err != nil {
			return err
		}

		desc := fmt.Sprintf("Batch %s approved: %d promoted, %d skipped", batch.UUID, approved, skipped)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionBatchApproved, desc, metadata, map[string]any{
			"batch_id":         batch.ID,
			"approved_count":   approved,
			"skipped_count":    skipped,
			"replace_existing": req.ReplaceExisting,
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return nil, NewBusinessError("ADMIN_APPROVE_BATCH_FAILED", "Batch not found", err)
		}
		if errors.Is(err, ErrBatchAlreadyProcessed) {
			return nil, NewBusinessError("ADMIN_APPROVE_BATCH_FAILED", "Batch has already been processed", err)
		}
		if errors.Is(err, ErrBatchEmpty) {
			return nil, NewBusinessError("ADMIN_APPROVE_BATCH_FAILED", "Batch has no staged rows", err)
		}
		if isUniqueViolation(err) {
			return nil, NewBusinessError("ADMIN_APPROVE_BATCH_CONFLICT", "A concurrent promotion activated one of these rates first", ErrActiveRateConflict)
		}
		return nil, NewBusinessError("ADMIN_APPROVE_BATCH_FAILED", "Failed to approve batch", err)
	}

	return &dto.ApproveBatchResponse{
		Message:       "Batch approved",
		ApprovedCount: approved,
		SkippedCount:  skipped,
	}, nil
}

// RejectBatch marks a pending batch rejected. Staged rows are left pending:
// the terminal batch status already makes them unpromotable, and only active
// rows are visible to quotes, so keeping them preserves what was submitted.
// Requires a reason.
func (s *ApprovalFlowImpl) RejectBatch(ctx context.Context, req *dto.RejectBatchRequest, adminID uint, metadata *ClientMetadata) (*dto.RejectBatchResponse, error) {
	if req == nil || req.BatchID == 0 {
		return nil, NewBusinessError("ADMIN_REJECT_BATCH_FAILED", "batch_id is required", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, NewBusinessError("ADMIN_REJECT_BATCH_FAILED", "Rejection reason is required", ErrRejectReasonRequired)
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		batch, err := s.batchRepo.ByID(txCtx, req.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return ErrBatchNotFound
		}
		if !batch.CanTransitionTo(models.BatchStatusRejected) {
			return ErrBatchAlreadyProcessed
		}

		now := utils.UTCNow()
		batch.Status = models.BatchStatusRejected
		batch.ProcessedAt = &now
		batch.ProcessedBy = &adminID
		batch.Notes = &req.Reason
		if err := s.batchRepo.Update(txCtx, *batch); err != nil {
			return err
		}

		desc := fmt.Sprintf("Batch %s rejected: %s", batch.UUID, req.Reason)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionBatchRejected, desc, metadata, map[string]any{
			"batch_id": batch.ID,
			"reason":   req.Reason,
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return nil, NewBusinessError("ADMIN_REJECT_BATCH_FAILED", "Batch not found", err)
		}
		if errors.Is(err, ErrBatchAlreadyProcessed) {
			return nil, NewBusinessError("ADMIN_REJECT_BATCH_FAILED", "Batch has already been processed", err)
		}
		return nil, NewBusinessError("ADMIN_REJECT_BATCH_FAILED", "Failed to reject batch", err)
	}

	return &dto.RejectBatchResponse{Message: "Batch rejected"}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
