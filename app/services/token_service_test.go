package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) TokenService {
	t.Helper()
	svc, err := NewTokenService(
		time.Hour,
		24*time.Hour,
		"simurgh-test",
		"simurgh-admin",
		false,
		"", "",
		"test-secret-key-for-unit-tests",
	)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecretForHMAC(t *testing.T) {
	_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", false, "", "", "")
	assert.Error(t, err)
}

func TestGenerateAdminTokens_ProducesValidatableTokens(t *testing.T) {
	svc := newTestTokenService(t)

	access, refresh, err := svc.GenerateAdminTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := svc.ValidateAdminToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), accessClaims.AdminID)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.NotEmpty(t, accessClaims.TokenID)

	refreshClaims, err := svc.ValidateAdminToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateAdminToken_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ValidateAdminToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateAdminToken_RejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService(time.Hour, 24*time.Hour, "simurgh-test", "simurgh-admin", false, "", "", "a-different-secret")
	require.NoError(t, err)

	access, _, err := other.GenerateAdminTokens(7)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshAdminToken_RotatesAndRevokesOldRefresh(t *testing.T) {
	svc := newTestTokenService(t)

	_, refresh, err := svc.GenerateAdminTokens(9)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshAdminToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)

	// the consumed refresh token must not be replayable
	_, _, err = svc.RefreshAdminToken(refresh)
	assert.Error(t, err)
}

func TestRefreshAdminToken_RejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t)

	access, _, err := svc.GenerateAdminTokens(9)
	require.NoError(t, err)

	_, _, err = svc.RefreshAdminToken(access)
	assert.Error(t, err)
}

func TestRevokeToken_BlocksFurtherValidation(t *testing.T) {
	svc := newTestTokenService(t)

	access, _, err := svc.GenerateAdminTokens(3)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(access))
	assert.True(t, svc.IsTokenRevoked(access))

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// revoking twice is a no-op
	assert.NoError(t, svc.RevokeToken(access))
}
