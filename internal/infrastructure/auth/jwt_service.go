package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/you/hrplusauth/domain"
)

// tokenClaims is the signed payload. The subject is the principal id.
type tokenClaims struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService with HS256 tokens
type JWTServiceImpl struct {
	secretKey []byte
	issuer    string
	lifetime  time.Duration
	now       func() time.Time
}

// NewJWTService creates a new JWT service. The secret is copied and never changes afterwards.
func NewJWTService(secretKey string, issuer string, lifetime time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		lifetime:  lifetime,
		now:       time.Now,
	}
}

// Mint implements domain.TokenService. Expiry is fixed at issued-at plus the session lifetime.
func (j *JWTServiceImpl) Mint(p *domain.Principal) (string, *domain.SessionClaims, error) {
	if p == nil || p.ID == "" {
		return "", nil, domain.ErrInvalidClaims
	}

	// NumericDate has second precision
	now := j.now().UTC().Truncate(time.Second)
	claims := &domain.SessionClaims{
		TokenID:     uuid.NewString(),
		PrincipalID: p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		Status:      p.Status,
		IssuedAt:    now,
		ExpiresAt:   now.Add(j.lifetime),
	}

	token, err := j.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Reissue implements domain.TokenService
func (j *JWTServiceImpl) Reissue(claims *domain.SessionClaims) (string, error) {
	if claims == nil || claims.PrincipalID == "" || claims.TokenID == "" {
		return "", domain.ErrInvalidClaims
	}
	if !claims.ExpiresAt.After(j.now()) {
		return "", domain.NewAuthError(domain.KindTokenInvalid, domain.ErrTokenExpired)
	}
	return j.sign(claims)
}

func (j *JWTServiceImpl) sign(c *domain.SessionClaims) (string, error) {
	tc := tokenClaims{
		Email:  c.Email,
		Name:   c.Name,
		Role:   string(c.Role),
		Status: string(c.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Subject:   c.PrincipalID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(j.secretKey)
}

// Parse implements domain.TokenService. Signature, format and expiry failures
// all come back as a KindTokenInvalid AuthError wrapping the specific cause.
func (j *JWTServiceImpl) Parse(tokenString string) (*domain.SessionClaims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &tc, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, domain.NewAuthError(domain.KindTokenInvalid, classify(err))
	}

	if tc.Subject == "" || tc.ID == "" || tc.IssuedAt == nil {
		return nil, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrInvalidClaims)
	}

	return &domain.SessionClaims{
		TokenID:     tc.ID,
		PrincipalID: tc.Subject,
		Email:       tc.Email,
		Name:        tc.Name,
		Role:        domain.Role(tc.Role),
		Status:      domain.Status(tc.Status),
		IssuedAt:    tc.IssuedAt.Time.UTC(),
		ExpiresAt:   tc.ExpiresAt.Time.UTC(),
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	default:
		return domain.ErrTokenInvalid
	}
}
