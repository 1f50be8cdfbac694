package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	subscriptionDomain "github.com/rent-home/service-matching/internal/domain/subscription"
	userDomain "github.com/rent-home/service-matching/internal/domain/user"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

const (
	invalidPlanMessage    = "请选择套餐：month（月付）或 quarter（季付）"
	missingOrderMessage   = "请传入 orderId"
	orderNotFoundMessage  = "订单不存在"
	foreignOrderMessage   = "只能标记自己的订单"
	alreadyPaidMessage    = "订单已是已支付状态"
	markedPaidMessage     = "已标记为已支付，订阅已生效"
	orderCreatedMessage   = "订单已创建，请完成支付（当前为手动标记，管理员可在后台标记为已支付）"
	subscriptionRequired  = "请先开通或续费订阅服务"
	subscriptionErrorCode = "SUBSCRIPTION_EXPIRED"
)

// CreateOrderRequest is the body of POST /api/subscription/create.
type CreateOrderRequest struct {
	Plan string `json:"plan"`
}

// MarkPaidRequest is the body of POST /api/subscription/mark-paid.
type MarkPaidRequest struct {
	OrderID string `json:"orderId"`
}

// CreatedOrderDTO is returned after an order is placed.
type CreatedOrderDTO struct {
	ID        string `json:"id"`
	Plan      string `json:"plan"`
	PlanName  string `json:"planName"`
	Amount    int64  `json:"amount"`
	PayStatus string `json:"payStatus"`
	Message   string `json:"message"`
}

// MarkPaidResult is the order after payment plus a user-facing note.
type MarkPaidResult struct {
	Order   *subscriptionDomain.Order
	Message string
}

// MySubscriptionDTO lists a user's orders and current validity.
type MySubscriptionDTO struct {
	SubscriptionExpireAt  *time.Time                  `json:"subscriptionExpireAt"`
	HasActiveSubscription bool                        `json:"hasActiveSubscription"`
	Orders                []*subscriptionDomain.Order `json:"orders"`
}

// SubscriptionService manages manually paid subscription orders.
type SubscriptionService struct {
	orders subscriptionDomain.OrderRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(orders subscriptionDomain.OrderRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{orders: orders, now: time.Now, logger: logger}
}

// CreateOrder places a pending order for userID.
func (s *SubscriptionService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*CreatedOrderDTO, error) {
	plan, terms, ok := subscriptionDomain.ParsePlan(req.Plan)
	if !ok {
		return nil, domain.NewValidationError(invalidPlanMessage)
	}

	ids, err := s.orders.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	order, err := subscriptionDomain.NewOrder(userDomain.NextSequentialID("SUB", 6, ids), userID, plan, s.now())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("subscription order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("plan", string(plan)),
	)
	return &CreatedOrderDTO{
		ID:        order.ID,
		Plan:      string(plan),
		PlanName:  terms.Name,
		Amount:    order.AmountCents,
		PayStatus: string(order.PayStatus),
		Message:   orderCreatedMessage,
	}, nil
}

// MarkPaid marks one of the user's own orders as paid. Repeating it is harmless.
func (s *SubscriptionService) MarkPaid(ctx context.Context, userID string, req MarkPaidRequest) (*MarkPaidResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, domain.NewValidationError(missingOrderMessage)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, &domain.DomainError{Kind: domain.KindNotFound, Message: orderNotFoundMessage}
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.NewForbiddenError(foreignOrderMessage)
	}

	changed, err := order.MarkPaid(s.now())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if !changed {
		return &MarkPaidResult{Order: order, Message: alreadyPaidMessage}, nil
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("subscription order paid",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Timep("expire_at", order.ExpireAt),
	)
	return &MarkPaidResult{Order: order, Message: markedPaidMessage}, nil
}

// MySubscription lists the user's orders, newest first.
func (s *SubscriptionService) MySubscription(ctx context.Context, userID string) (*MySubscriptionDTO, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscriptionDomain.SortNewestFirst(orders)

	expireAt := subscriptionDomain.ActiveUntil(orders, s.now())
	if orders == nil {
		orders = []*subscriptionDomain.Order{}
	}
	return &MySubscriptionDTO{
		SubscriptionExpireAt:  expireAt,
		HasActiveSubscription: expireAt != nil,
		Orders:                orders,
	}, nil
}

// RequireActive returns a forbidden error unless the user has an unexpired paid order.
func (s *SubscriptionService) RequireActive(ctx context.Context, userID string) error {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if subscriptionDomain.ActiveUntil(orders, s.now()) == nil {
		return domain.NewForbiddenError(subscriptionRequired).WithCode(subscriptionErrorCode)
	}
	return nil
}
