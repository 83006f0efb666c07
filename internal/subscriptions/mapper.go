package subscriptions

import (
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// Stripe price ids from the product catalog. Anything else maps to free.
const (
	PriceIDProMonthly      = "price_pro_monthly"
	PriceIDBusinessMonthly = "price_business_monthly"
)

// PlanFromPriceID maps a Stripe price id to a plan tier. The mapping is
// total: unknown price ids resolve to the free tier rather than failing.
func PlanFromPriceID(priceID string) enums.PlanType {
	switch priceID {
	case PriceIDProMonthly:
		return enums.PlanTypePro
	case PriceIDBusinessMonthly:
		return enums.PlanTypeBusiness
	default:
		return enums.PlanTypeFree
	}
}

// PriceIDForPlan is the inverse lookup used by checkout; free has no price.
func PriceIDForPlan(plan enums.PlanType) string {
	switch plan {
	case enums.PlanTypePro:
		return PriceIDProMonthly
	case enums.PlanTypeBusiness:
		return PriceIDBusinessMonthly
	default:
		return ""
	}
}

// CustomerIDFromSubscription extracts the Stripe customer id off the event payload.
func CustomerIDFromSubscription(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}

// PriceIDFromSubscription returns the price id of the first subscription item.
func PriceIDFromSubscription(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	if sub.Items.Data[0].Price != nil {
		return sub.Items.Data[0].Price.ID
	}
	return ""
}

// ApplyStripeState mutates the stored row with the provider's current view.
func ApplyStripeState(target *models.Subscription, sub *stripe.Subscription, plan enums.PlanType) {
	if target == nil || sub == nil {
		return
	}
	subID := sub.ID
	target.StripeSubscriptionID = &subID
	target.PlanType = plan
	target.Status = enums.SubscriptionStatus(sub.Status)
	startTS, endTS := periodFromSubscription(sub)
	target.CurrentPeriodStart = toTimePtr(startTS)
	target.CurrentPeriodEnd = toTimePtr(endTS)
}

// ApplyCancellation drops the row back to the free tier.
func ApplyCancellation(target *models.Subscription) {
	if target == nil {
		return
	}
	target.PlanType = enums.PlanTypeFree
	target.Status = enums.SubscriptionStatusCanceled
}

func periodFromSubscription(sub *stripe.Subscription) (int64, int64) {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return 0, 0
	}
	item := sub.Items.Data[0]
	return item.CurrentPeriodStart, item.CurrentPeriodEnd
}

func toTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
