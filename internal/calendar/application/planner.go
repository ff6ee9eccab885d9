package application

import (
	"time"

	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
)

// PlanRenewals projects every charge of the given subscriptions over the next
// horizonMonths as calendar events, chronological per subscription. A horizon
// of zero or less selects the default projection horizon.
func PlanRenewals(subs []*trackingDomain.Subscription, now time.Time, horizonMonths int) []RenewalEvent {
	if horizonMonths <= 0 {
		horizonMonths = trackingDomain.DefaultHorizonMonths
	}

	horizonEnd := trackingDomain.AddMonths(trackingDomain.StartOfMonth(now), horizonMonths)

	var events []RenewalEvent
	for _, sub := range subs {
		if !sub.IsActive(now) {
			continue
		}
		charge, ok := trackingDomain.NextChargeDate(sub, now)
		if !ok {
			continue
		}

		step := sub.Cycle().Months()
		for charge.Before(horizonEnd) {
			if end := sub.EndDate(); end != nil &&
				trackingDomain.StartOfDay(charge).After(trackingDomain.StartOfDay(*end)) {
				break
			}
			events = append(events, RenewalEvent{
				SubscriptionID: sub.ID(),
				Title:          sub.Name(),
				Amount:         sub.Amount(),
				Currency:       sub.Currency(),
				ChargeDate:     trackingDomain.StartOfDay(charge),
			})
			charge = trackingDomain.AddMonths(charge, step)
		}
	}
	return events
}
