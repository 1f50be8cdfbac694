package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	subscriptionDomain "github.com/rent-home/service-matching/internal/domain/subscription"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

// OrderModel is the GORM model for the subscription_orders table.
type OrderModel struct {
	ID          string     `gorm:"primaryKey;size:20"`
	UserID      string     `gorm:"index;not null;size:20"`
	Plan        string     `gorm:"not null;size:20"`
	AmountCents int64      `gorm:"not null"`
	PayStatus   string     `gorm:"not null;size:20;default:'pending'"`
	PaidAt      *time.Time `gorm:""`
	ExpireAt    *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (OrderModel) TableName() string {
	return "subscription_orders"
}

// GormOrderRepository is the GORM-based implementation of OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID retrieves an order by its identifier.
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*subscriptionDomain.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Order", id)
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return toDomainOrder(&model), nil
}

// FindByUserID returns a user's orders, newest first.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*subscriptionDomain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user orders: %w", err)
	}

	orders := make([]*subscriptionDomain.Order, len(models))
	for i := range models {
		orders[i] = toDomainOrder(&models[i])
	}
	return orders, nil
}

// ListIDs returns every order ID.
func (r *GormOrderRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list order IDs: %w", err)
	}
	return ids, nil
}

// Save persists a new order.
func (r *GormOrderRepository) Save(ctx context.Context, o *subscriptionDomain.Order) error {
	if err := r.db.WithContext(ctx).Create(toOrderModel(o)).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// Update persists the payment state of an order.
func (r *GormOrderRepository) Update(ctx context.Context, o *subscriptionDomain.Order) error {
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"pay_status": string(o.PayStatus),
			"paid_at":    o.PaidAt,
			"expire_at":  o.ExpireAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Order", o.ID)
	}
	return nil
}

func toOrderModel(o *subscriptionDomain.Order) *OrderModel {
	return &OrderModel{
		ID:          o.ID,
		UserID:      o.UserID,
		Plan:        string(o.Plan),
		AmountCents: o.AmountCents,
		PayStatus:   string(o.PayStatus),
		PaidAt:      o.PaidAt,
		ExpireAt:    o.ExpireAt,
		CreatedAt:   o.CreatedAt,
	}
}

func toDomainOrder(m *OrderModel) *subscriptionDomain.Order {
	return &subscriptionDomain.Order{
		ID:          m.ID,
		UserID:      m.UserID,
		Plan:        subscriptionDomain.Plan(m.Plan),
		AmountCents: m.AmountCents,
		PayStatus:   subscriptionDomain.PayStatus(m.PayStatus),
		PaidAt:      m.PaidAt,
		ExpireAt:    m.ExpireAt,
		CreatedAt:   m.CreatedAt,
	}
}
