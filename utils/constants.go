package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Rating constants
const (
	// VolumetricDivisor converts cubic centimeters to kilograms:
	// (L x W x H) / 5000, the carrier-industry standard.
	VolumetricDivisor = 5000.0

	// DefaultCurrency is the currency code rate rows are priced in (minor units)
	DefaultCurrency = "USD"
)
