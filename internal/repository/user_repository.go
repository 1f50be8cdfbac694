package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	userDomain "github.com/rent-home/service-matching/internal/domain/user"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:20"`
	Phone     string    `gorm:"uniqueIndex;not null;size:20"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// AdminModel is the GORM model for the admins table.
type AdminModel struct {
	ID           string    `gorm:"primaryKey;size:20"`
	Username     string    `gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string    `gorm:"not null;size:100"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AdminModel) TableName() string {
	return "admins"
}

// GormUserRepository is the GORM-based implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", phone)
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return toDomainUser(&model), nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

func (r *GormUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	return ids, nil
}

func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	model := &UserModel{ID: u.ID, Phone: u.Phone, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Touch records a login at the given time.
func (r *GormUserRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Update("updated_at", at).Error; err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// GormAdminRepository is the GORM-based implementation of AdminRepository.
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GormAdminRepository.
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) FindByUsername(ctx context.Context, username string) (*userDomain.Admin, error) {
	var model AdminModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Admin", username)
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &userDomain.Admin{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}, nil
}

func (r *GormAdminRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&AdminModel{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list admin IDs: %w", err)
	}
	return ids, nil
}

func (r *GormAdminRepository) Save(ctx context.Context, a *userDomain.Admin) error {
	model := &AdminModel{ID: a.ID, Username: a.Username, PasswordHash: a.PasswordHash, CreatedAt: a.CreatedAt}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save admin: %w", err)
	}
	return nil
}

func toDomainUser(m *UserModel) *userDomain.User {
	return &userDomain.User{
		ID:        m.ID,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
