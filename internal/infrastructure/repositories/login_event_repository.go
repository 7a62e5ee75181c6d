package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/you/hrplusauth/domain"
	"gorm.io/gorm"
)

// LoginEventRepositoryImpl implements domain.LoginEventRepository using GORM
type LoginEventRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// DBLoginEvent represents one row of login history
type DBLoginEvent struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36;not null"`
	IPAddress *string   `gorm:"size:64"`
	UserAgent *string   `gorm:"size:512"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBLoginEvent) TableName() string {
	return "login_history"
}

// NewLoginEventRepository creates a new login event repository
func NewLoginEventRepository(db *gorm.DB) domain.LoginEventRepository {
	return &LoginEventRepositoryImpl{db: db, now: time.Now}
}

// Create implements domain.LoginEventRepository. The timestamp is the server clock at write time.
func (r *LoginEventRepositoryImpl) Create(ctx context.Context, event *domain.LoginEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = r.now().UTC()

	return r.db.WithContext(ctx).Create(&DBLoginEvent{
		ID:        event.ID,
		UserID:    event.PrincipalID,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		CreatedAt: event.CreatedAt,
	}).Error
}
