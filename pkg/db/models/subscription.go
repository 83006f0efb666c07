package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// Subscription persists Stripe subscription state, one row per user.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID                `gorm:"column:user_id;type:uuid;not null;unique"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id;not null;index"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id"`
	PlanType             enums.PlanType           `gorm:"column:plan_type;type:plan_type;not null;default:'free'"`
	Status               enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
