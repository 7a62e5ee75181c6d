package auth

import (
	"github.com/you/hrplusauth/domain"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once so lookups that find no principal still pay for a bcrypt comparison
const dummyPassword = "hrplus-timing-equalizer"

// PasswordServiceImpl implements domain.PasswordService
type PasswordServiceImpl struct {
	cost      int
	dummyHash []byte
}

// NewPasswordService creates a new password service
func NewPasswordService() domain.PasswordService {
	return NewPasswordServiceWithCost(bcrypt.DefaultCost)
}

// NewPasswordServiceWithCost creates a password service with the given bcrypt cost.
// Costs outside bcrypt's range fall back to the default.
func NewPasswordServiceWithCost(cost int) domain.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	return &PasswordServiceImpl{
		cost:      cost,
		dummyHash: dummy,
	}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// VerifyDummy implements domain.PasswordService
func (p *PasswordServiceImpl) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(password))
}
