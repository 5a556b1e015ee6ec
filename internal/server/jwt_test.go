package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/types"
)

func newTestJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: testSecret, Issuer: config.DefaultJWTIssuer, ExpirationHours: 24})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newTestJWTService()
	id := uuid.New()

	token, err := service.GenerateToken(id, "ada@example.com", types.RoleRecruiter)
	require.NoError(t, err)

	principal, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, principal.GetUserID())
	assert.Equal(t, "ada@example.com", principal.GetEmail())
	assert.Equal(t, types.RoleRecruiter, principal.GetRole())
}

func TestJWTService_Rejects(t *testing.T) {
	service := newTestJWTService()
	id := uuid.New()

	expired := newTestJWTService()
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expiredToken, err := expired.GenerateToken(id, "a@example.com", types.RoleCandidate)
	require.NoError(t, err)

	otherKey := NewJWTService(&config.JWTConfig{Secret: "another-secret-0123456789", Issuer: config.DefaultJWTIssuer, ExpirationHours: 1})
	forged, err := otherKey.GenerateToken(id, "a@example.com", types.RoleCandidate)
	require.NoError(t, err)

	otherIssuer := NewJWTService(&config.JWTConfig{Secret: testSecret, Issuer: "someone-else", ExpirationHours: 1})
	wrongIssuer, err := otherIssuer.GenerateToken(id, "a@example.com", types.RoleCandidate)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: id})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	nilUser, err := service.GenerateToken(uuid.Nil, "a@example.com", types.RoleCandidate)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "a.b.c",
		"expired":      expiredToken,
		"wrong key":    forged,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
		"nil user":     nilUser,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
