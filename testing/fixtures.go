// Package testing provides test utilities and database setup for testing the shipping rate platform
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an active admin with the password "TestPass123!"
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("admin_%06d", rand.Intn(1000000)),
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestBatch creates a pending batch with the given number of staged rows.
// Rows share the carrier/service pair and get distinct weight tiers.
func (tf *TestFixtures) CreateTestBatch(countryCode, carrier, service string, rowCount int) (*models.RateBatch, []*models.RateRow, error) {
	batch := &models.RateBatch{
		UUID:        uuid.New(),
		CountryCode: utils.ToPtr(countryCode),
		TotalPrices: rowCount,
		Status:      models.BatchStatusPending,
		Source:      "test-fixture",
	}
	if err := tf.DB.DB.Create(batch).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test batch: %w", err)
	}

	rows := make([]*models.RateRow, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		row := &models.RateRow{
			UUID:                 uuid.New(),
			CountryCode:          countryCode,
			CountryName:          "Test Country",
			Carrier:              carrier,
			Service:              service,
			WeightTierKg:         float64(i+1) * 0.5,
			PriceMinorUnits:      int64((i + 1) * 1000),
			Status:               models.RateRowStatusPending,
			IsVisibleToCustomers: utils.ToPtr(true),
			BatchID:              &batch.ID,
		}
		if err := tf.DB.DB.Create(row).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create test rate row: %w", err)
		}
		rows = append(rows, row)
	}

	return batch, rows, nil
}

// CreateActiveRate creates a single active rate row outside any batch
func (tf *TestFixtures) CreateActiveRate(countryCode, carrier, service string, weightTierKg float64, priceMinorUnits int64) (*models.RateRow, error) {
	now := utils.UTCNow()
	row := &models.RateRow{
		UUID:                 uuid.New(),
		CountryCode:          countryCode,
		CountryName:          "Test Country",
		Carrier:              carrier,
		Service:              service,
		WeightTierKg:         weightTierKg,
		PriceMinorUnits:      priceMinorUnits,
		Status:               models.RateRowStatusActive,
		IsVisibleToCustomers: utils.ToPtr(true),
		ApprovedAt:           &now,
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create active rate row: %w", err)
	}
	return row, nil
}

// CreateTestServiceSetting registers a visible carrier/service pair
func (tf *TestFixtures) CreateTestServiceSetting(carrier, service string, sortOrder int) (*models.ServiceSetting, error) {
	setting := &models.ServiceSetting{
		UUID:        uuid.New(),
		Carrier:     carrier,
		Service:     service,
		DisplayName: fmt.Sprintf("%s %s", carrier, service),
		IsActive:    utils.ToPtr(true),
		SortOrder:   sortOrder,
	}
	if err := tf.DB.DB.Create(setting).Error; err != nil {
		return nil, fmt.Errorf("failed to create test service setting: %w", err)
	}
	return setting, nil
}
