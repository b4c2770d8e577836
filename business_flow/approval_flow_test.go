package businessflow

import (
	"context"
	"testing"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	testingutil "github.com/simurgh-post/simurgh/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFlowTestDB(t *testing.T) *testingutil.TestDB {
	t.Helper()
	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})
	return testDB
}

func TestApproveBatch(t *testing.T) {
	testDB := setupFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := context.Background()

	batchRepo := repository.NewRateBatchRepository(testDB.DB)
	rowRepo := repository.NewRateRowRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	flow := NewApprovalFlow(batchRepo, rowRepo, auditRepo, testDB.DB)

	metadata := NewClientMetadata("127.0.0.1", "test-agent")

	t.Run("PromotesStagedRows", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, rows, err := fixtures.CreateTestBatch("DE", "DHL", "express", 3)
		require.NoError(t, err)

		resp, err := flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.ApprovedCount)
		assert.Equal(t, 0, resp.SkippedCount)

		for _, row := range rows {
			got, err := rowRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, models.RateRowStatusActive, got.Status)
			require.NotNil(t, got.ApprovedBy)
			assert.Equal(t, admin.ID, *got.ApprovedBy)
			assert.NotNil(t, got.ApprovedAt)
		}

		gotBatch, err := batchRepo.ByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BatchStatusApproved, gotBatch.Status)
		require.NotNil(t, gotBatch.ApprovedPrices)
		assert.Equal(t, 3, *gotBatch.ApprovedPrices)
		require.NotNil(t, gotBatch.ProcessedBy)
		assert.Equal(t, admin.ID, *gotBatch.ProcessedBy)

		logs, err := auditRepo.ListByAction(ctx, models.AuditActionBatchApproved, 10, 0)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("ReplaceExistingSupersedesActiveRates", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		// tier 0.5 collides with the first staged row of the batch
		old, err := fixtures.CreateActiveRate("DE", "DHL", "express", 0.5, 1200)
		require.NoError(t, err)

		batch, rows, err := fixtures.CreateTestBatch("DE", "DHL", "express", 2)
		require.NoError(t, err)

		resp, err := flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{
			BatchID:         batch.ID,
			ReplaceExisting: true,
		}, admin.ID, metadata)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.ApprovedCount)
		assert.Equal(t, 0, resp.SkippedCount)

		gotOld, err := rowRepo.ByID(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RateRowStatusDisabled, gotOld.Status)

		gotNew, err := rowRepo.ByID(ctx, rows[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.RateRowStatusActive, gotNew.Status)
	})

	t.Run("SkipsCollidingRowsWithoutReplace", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		old, err := fixtures.CreateActiveRate("DE", "DHL", "express", 0.5, 1200)
		require.NoError(t, err)

		batch, rows, err := fixtures.CreateTestBatch("DE", "DHL", "express", 2)
		require.NoError(t, err)

		resp, err := flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.ApprovedCount)
		assert.Equal(t, 1, resp.SkippedCount)

		// the old rate keeps serving its tier
		gotOld, err := rowRepo.ByID(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RateRowStatusActive, gotOld.Status)

		gotSkipped, err := rowRepo.ByID(ctx, rows[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.RateRowStatusPending, gotSkipped.Status)
	})

	t.Run("TerminalBatchCannotBeApprovedAgain", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, _, err := fixtures.CreateTestBatch("DE", "DHL", "express", 1)
		require.NoError(t, err)

		_, err = flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.NoError(t, err)

		_, err = flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.Error(t, err)
		assert.True(t, IsBatchAlreadyProcessed(err))
	})

	t.Run("UnknownBatchIsNotFound", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		_, err = flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: 424242}, admin.ID, metadata)
		require.Error(t, err)
		assert.True(t, IsBatchNotFound(err))
	})

	t.Run("ActiveTierLookupSeesPromotedRates", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, _, err := fixtures.CreateTestBatch("DE", "DHL", "express", 3)
		require.NoError(t, err)

		// staged rows are invisible to the lookup before approval
		row, err := rowRepo.ActiveTierFor(ctx, "DE", "DHL", "express", 0.4)
		require.NoError(t, err)
		assert.Nil(t, row)

		_, err = flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.NoError(t, err)

		// fixture tiers are 0.5, 1.0, 1.5; 0.4 kg lands in the 0.5 tier
		row, err = rowRepo.ActiveTierFor(ctx, "DE", "DHL", "express", 0.4)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, 0.5, row.WeightTierKg)

		// above the highest tier nothing covers
		row, err = rowRepo.ActiveTierFor(ctx, "DE", "DHL", "express", 2.5)
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestRejectBatch(t *testing.T) {
	testDB := setupFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := context.Background()

	batchRepo := repository.NewRateBatchRepository(testDB.DB)
	rowRepo := repository.NewRateRowRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	flow := NewApprovalFlow(batchRepo, rowRepo, auditRepo, testDB.DB)

	metadata := NewClientMetadata("127.0.0.1", "test-agent")

	t.Run("RequiresReason", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, _, err := fixtures.CreateTestBatch("DE", "DHL", "express", 1)
		require.NoError(t, err)

		_, err = flow.RejectBatch(ctx, &dto.RejectBatchRequest{BatchID: batch.ID, Reason: "   "}, admin.ID, metadata)
		require.Error(t, err)
		assert.True(t, IsRejectReasonRequired(err))
	})

	t.Run("StagedRowsRemainPending", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, rows, err := fixtures.CreateTestBatch("DE", "DHL", "express", 2)
		require.NoError(t, err)

		resp, err := flow.RejectBatch(ctx, &dto.RejectBatchRequest{
			BatchID: batch.ID,
			Reason:  "prices look stale",
		}, admin.ID, metadata)
		require.NoError(t, err)
		require.NotNil(t, resp)

		// rows keep their submitted state; the terminal batch makes them
		// unpromotable and quotes only ever read active rows
		for _, row := range rows {
			got, err := rowRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RateRowStatusPending, got.Status)
		}

		lookup, err := rowRepo.ActiveTierFor(ctx, "DE", "DHL", "express", 0.4)
		require.NoError(t, err)
		assert.Nil(t, lookup)

		gotBatch, err := batchRepo.ByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BatchStatusRejected, gotBatch.Status)
		require.NotNil(t, gotBatch.Notes)
		assert.Equal(t, "prices look stale", *gotBatch.Notes)

		logs, err := auditRepo.ListByAction(ctx, models.AuditActionBatchRejected, 10, 0)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("RejectedBatchCannotBeApproved", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		batch, _, err := fixtures.CreateTestBatch("DE", "DHL", "express", 1)
		require.NoError(t, err)

		_, err = flow.RejectBatch(ctx, &dto.RejectBatchRequest{BatchID: batch.ID, Reason: "bad data"}, admin.ID, metadata)
		require.NoError(t, err)

		_, err = flow.ApproveBatch(ctx, &dto.ApproveBatchRequest{BatchID: batch.ID}, admin.ID, metadata)
		require.Error(t, err)
		assert.True(t, IsBatchAlreadyProcessed(err))
	})
}
