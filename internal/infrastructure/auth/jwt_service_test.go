package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/hrplusauth/domain"
)

const testSecret = "test-secret-key-for-sessions"

func newTestJWT(now time.Time) *JWTServiceImpl {
	svc := NewJWTService(testSecret, "hrplus", 30*24*time.Hour).(*JWTServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func alice() *domain.Principal {
	return &domain.Principal{
		ID:     "u-alice",
		Name:   "Alice",
		Email:  "alice@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.StatusActive,
	}
}

func TestJWTServiceImpl_MintAndParse(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(now)

	token, minted, err := svc.Mint(alice())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, now, minted.IssuedAt)
	assert.Equal(t, now.Add(30*24*time.Hour), minted.ExpiresAt)
	assert.NotEmpty(t, minted.TokenID)

	parsed, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, minted, parsed)
}

func TestJWTServiceImpl_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWT(time.Now())

	t1, c1, err := svc.Mint(alice())
	require.NoError(t, err)
	t2, c2, err := svc.Mint(alice())
	require.NoError(t, err)

	assert.NotEqual(t, c1.TokenID, c2.TokenID)
	assert.NotEqual(t, t1, t2)
}

func TestJWTServiceImpl_MintInvalidPrincipal(t *testing.T) {
	svc := newTestJWT(time.Now())

	_, _, err := svc.Mint(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidClaims)

	_, _, err = svc.Mint(&domain.Principal{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidClaims)
}

func TestJWTServiceImpl_ParseFailures(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(now)
	valid, _, err := svc.Mint(alice())
	require.NoError(t, err)

	other := NewJWTService("another-secret", "hrplus", time.Hour).(*JWTServiceImpl)
	other.now = svc.now
	foreign, _, err := other.Mint(alice())
	require.NoError(t, err)

	wrongIssuer := NewJWTService(testSecret, "someone-else", time.Hour).(*JWTServiceImpl)
	wrongIssuer.now = svc.now
	wrongIss, _, err := wrongIssuer.Mint(alice())
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u-alice", "jti": "x", "iss": "hrplus",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": "x", "iss": "hrplus", "iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-alice", "jti": "x", "iss": "hrplus", "iat": now.Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		at    time.Time
		cause error
	}{
		{name: "expired", token: valid, at: now.Add(31 * 24 * time.Hour), cause: domain.ErrTokenExpired},
		{name: "malformed", token: "not.a.jwt", at: now, cause: domain.ErrTokenMalformed},
		{name: "empty", token: "", at: now, cause: domain.ErrTokenMalformed},
		{name: "bad signature", token: foreign, at: now, cause: domain.ErrTokenInvalid},
		{name: "tampered signature", token: tamper(valid), at: now, cause: domain.ErrTokenInvalid},
		{name: "none algorithm", token: noneAlg, at: now, cause: domain.ErrTokenInvalid},
		{name: "wrong issuer", token: wrongIss, at: now, cause: domain.ErrTokenInvalid},
		{name: "no subject", token: noSubject, at: now, cause: domain.ErrInvalidClaims},
		{name: "no expiry", token: noExpiry, at: now, cause: domain.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			svc.now = func() time.Time { return at }

			claims, err := svc.Parse(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Equal(t, domain.KindTokenInvalid, domain.KindOf(err))
			assert.True(t, errors.Is(err, domain.ErrUnauthenticated), "every parse failure is unauthenticated")
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestJWTServiceImpl_Reissue(t *testing.T) {
	issued := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(issued)

	_, claims, err := svc.Mint(alice())
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(10 * 24 * time.Hour) }
	claims.Role = domain.RoleDeveloper
	claims.Status = domain.StatusSuspended

	token, err := svc.Reissue(claims)
	require.NoError(t, err)

	parsed, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, parsed.Role)
	assert.Equal(t, domain.StatusSuspended, parsed.Status)
	assert.Equal(t, issued, parsed.IssuedAt, "reissue keeps issued-at")
	assert.Equal(t, issued.Add(30*24*time.Hour), parsed.ExpiresAt, "reissue must not extend expiry")
	assert.Equal(t, claims.TokenID, parsed.TokenID)

	svc.now = func() time.Time { return issued.Add(31 * 24 * time.Hour) }
	_, err = svc.Reissue(claims)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	_, err = svc.Reissue(&domain.SessionClaims{PrincipalID: "u"})
	assert.ErrorIs(t, err, domain.ErrInvalidClaims)
}

// tamper flips the first character of the signature segment
func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
