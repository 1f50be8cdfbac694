// Package subscription models paid access orders. Payment is marked manually.
package subscription

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Plan identifies a subscription length.
type Plan string

const (
	PlanMonth   Plan = "month"
	PlanQuarter Plan = "quarter"
)

// PlanTerms is the price and duration of a plan.
type PlanTerms struct {
	Name        string
	AmountCents int64
	Days        int
}

var plans = map[Plan]PlanTerms{
	PlanMonth:   {Name: "月度订阅", AmountCents: 2900, Days: 30},
	PlanQuarter: {Name: "季度订阅", AmountCents: 7900, Days: 90},
}

// ParsePlan accepts a plan name case-insensitively.
func ParsePlan(s string) (Plan, PlanTerms, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	terms, ok := plans[p]
	return p, terms, ok
}

// PayStatus is the payment state of an order.
type PayStatus string

const (
	PayStatusPending PayStatus = "pending"
	PayStatusPaid    PayStatus = "paid"
)

// Order is one subscription purchase.
type Order struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Plan        Plan       `json:"plan"`
	AmountCents int64      `json:"amount"`
	PayStatus   PayStatus  `json:"payStatus"`
	PaidAt      *time.Time `json:"paidAt"`
	ExpireAt    *time.Time `json:"expireAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewOrder creates a pending order.
func NewOrder(id, userID string, plan Plan, now time.Time) (*Order, error) {
	terms, ok := plans[plan]
	if !ok {
		return nil, fmt.Errorf("unknown plan: %s", plan)
	}
	return &Order{
		ID:          id,
		UserID:      userID,
		Plan:        plan,
		AmountCents: terms.AmountCents,
		PayStatus:   PayStatusPending,
		CreatedAt:   now.UTC(),
	}, nil
}

// MarkPaid sets the order paid at now and starts its validity window. Paying twice is a no-op.
func (o *Order) MarkPaid(now time.Time) (changed bool, err error) {
	if o.PayStatus == PayStatusPaid {
		return false, nil
	}
	terms, ok := plans[o.Plan]
	if !ok {
		return false, fmt.Errorf("unknown plan: %s", o.Plan)
	}
	paidAt := now.UTC()
	expireAt := paidAt.Add(time.Duration(terms.Days) * 24 * time.Hour)
	o.PayStatus = PayStatusPaid
	o.PaidAt = &paidAt
	o.ExpireAt = &expireAt
	return true, nil
}

// IsActiveAt reports whether the order is paid and unexpired at now.
func (o *Order) IsActiveAt(now time.Time) bool {
	return o.PayStatus == PayStatusPaid && o.ExpireAt != nil && o.ExpireAt.After(now)
}

// ActiveUntil returns the latest expiry among active orders, or nil.
func ActiveUntil(orders []*Order, now time.Time) *time.Time {
	var latest *time.Time
	for _, o := range orders {
		if !o.IsActiveAt(now) {
			continue
		}
		if latest == nil || o.ExpireAt.After(*latest) {
			latest = o.ExpireAt
		}
	}
	return latest
}

// SortNewestFirst orders by creation time descending.
func SortNewestFirst(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// OrderRepository persists orders.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)
	ListIDs(ctx context.Context) ([]string, error)
	Save(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
}
