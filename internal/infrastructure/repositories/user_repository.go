package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/you/hrplusauth/domain"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for a principal
type DBUser struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:255"`
	Username     *string   `gorm:"uniqueIndex;size:64"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"column:password;not null"`
	Role         string    `gorm:"index;size:32;not null"`
	Status       string    `gorm:"index;size:32;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// FindByEmailOrUsername implements domain.UserRepository.
// At most two rows are fetched; a second row means the identifier is ambiguous.
func (r *UserRepositoryImpl) FindByEmailOrUsername(ctx context.Context, identifier string) (*domain.Principal, error) {
	var rows []DBUser
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? OR username = ?", strings.ToLower(identifier), identifier).
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	switch len(rows) {
	case 0:
		return nil, domain.ErrUserNotFound
	case 1:
		return r.dbToDomain(&rows[0]), nil
	default:
		return nil, domain.ErrAmbiguousIdentifier
	}
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.PrincipalSnapshot, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).
		Select("id", "name", "role", "status").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Take(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.PrincipalSnapshot{
		ID:     dbUser.ID,
		Name:   dbUser.Name,
		Role:   domain.Role(dbUser.Role),
		Status: domain.Status(dbUser.Status),
	}, nil
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, principal *domain.Principal) error {
	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}
	principal.Email = strings.ToLower(strings.TrimSpace(principal.Email))

	dbUser := r.domainToDB(principal)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	principal.CreatedAt = dbUser.CreatedAt
	principal.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, principal *domain.Principal) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", principal.ID).Updates(map[string]interface{}{
		"name":     principal.Name,
		"username": nullable(principal.Username),
		"email":    strings.ToLower(principal.Email),
		"role":     string(principal.Role),
		"status":   string(principal.Status),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete implements domain.UserRepository
func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&DBUser{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// domainToDB converts domain principal to database user
func (r *UserRepositoryImpl) domainToDB(p *domain.Principal) *DBUser {
	return &DBUser{
		ID:           p.ID,
		Name:         p.Name,
		Username:     nullable(p.Username),
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         string(p.Role),
		Status:       string(p.Status),
	}
}

// dbToDomain converts database user to domain principal
func (r *UserRepositoryImpl) dbToDomain(u *DBUser) *domain.Principal {
	p := &domain.Principal{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         domain.Role(u.Role),
		Status:       domain.Status(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return p
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
