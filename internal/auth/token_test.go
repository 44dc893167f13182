package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "crosspay/pkg/domain-errors"
)

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc := NewTokenService("test-signing-key", "crosspay", time.Hour)

	token, err := svc.Issue("reporting-client", []string{"compliance:read"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reporting-client", claims.Subject)
	assert.Equal(t, []string{"compliance:read"}, claims.Roles)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-signing-key", "crosspay", -time.Minute)

	token, err := svc.Issue("reporting-client", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewTokenService("key-one", "crosspay", time.Hour)
	verifier := NewTokenService("key-two", "crosspay", time.Hour)

	token, err := issuer.Issue("reporting-client", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-signing-key", "crosspay", time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAuthenticate(t *testing.T) {
	client, err := NewClient("reporting-client", "s3cret", []string{"compliance:read"})
	require.NoError(t, err)
	authn := NewAuthenticator(client)

	roles, err := authn.Authenticate("reporting-client", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, []string{"compliance:read"}, roles)
}

func TestAuthenticateBadSecret(t *testing.T) {
	client, err := NewClient("reporting-client", "s3cret", nil)
	require.NoError(t, err)
	authn := NewAuthenticator(client)

	_, err = authn.Authenticate("reporting-client", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAuthenticateUnknownClient(t *testing.T) {
	authn := NewAuthenticator()

	_, err := authn.Authenticate("nobody", "anything")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
