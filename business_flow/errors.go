// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Batch-related errors
	ErrBatchNotFound         = errors.New("batch not found")
	ErrBatchAlreadyProcessed = errors.New("batch has already been processed")
	ErrBatchEmpty            = errors.New("batch contains no rows")
	ErrRejectReasonRequired  = errors.New("rejection reason is required")

	// Rate-related errors
	ErrRateRowNotFound    = errors.New("rate row not found")
	ErrActiveRateConflict = errors.New("an active rate already exists for this key")
	ErrRowValidation      = errors.New("row validation failed")
	ErrRateUpdateRequired = errors.New("at least one field must be provided for update")

	// Quote-related errors
	ErrDestinationRequired   = errors.New("destination country is required")
	ErrNonPositiveDimensions = errors.New("dimensions and weight must be positive")
	ErrMultiplierOutOfRange  = errors.New("multiplier must be positive")

	// Service setting errors
	ErrServiceSettingNotFound = errors.New("service setting not found")
	ErrServiceSettingExists   = errors.New("service setting already exists for this carrier and service")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidCaptcha    = errors.New("captcha verification failed")
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsBatchNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsBatchAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrBatchAlreadyProcessed)
}

func IsRejectReasonRequired(err error) bool {
	return errors.Is(err, ErrRejectReasonRequired)
}

func IsRateRowNotFound(err error) bool {
	return errors.Is(err, ErrRateRowNotFound)
}

func IsActiveRateConflict(err error) bool {
	return errors.Is(err, ErrActiveRateConflict)
}

func IsRowValidation(err error) bool {
	return errors.Is(err, ErrRowValidation)
}

func IsServiceSettingNotFound(err error) bool {
	return errors.Is(err, ErrServiceSettingNotFound)
}

func IsServiceSettingExists(err error) bool {
	return errors.Is(err, ErrServiceSettingExists)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}
