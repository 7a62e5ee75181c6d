package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/hrplusauth/domain"
)

// RevocationRepositoryImpl implements domain.RevocationRepository using Redis.
// Each revoked token id is kept until the token would have expired anyway.
type RevocationRepositoryImpl struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRevocationRepository creates a new revocation repository
func NewRevocationRepository(client *redis.Client) domain.RevocationRepository {
	return &RevocationRepositoryImpl{
		client: client,
		prefix: "revoked:",
		now:    time.Now,
	}
}

// Revoke implements domain.RevocationRepository
func (r *RevocationRepositoryImpl) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return domain.ErrInvalidClaims
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}
	return r.client.Set(ctx, r.prefix+tokenID, "1", ttl).Err()
}

// IsRevoked implements domain.RevocationRepository
func (r *RevocationRepositoryImpl) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
