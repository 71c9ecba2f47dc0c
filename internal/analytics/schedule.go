package analytics

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// maxUpcomingPayments caps the schedule at the soonest five charges.
const maxUpcomingPayments = 5

// NextBillingDate computes when a service will next charge, relative to now.
// A billing day at or after today's day-of-month lands in the current
// calendar month; one already passed rolls to the same day next month.
//
// Billing days past the end of the target month (say 31 in April) are fed to
// the calendar as-is and normalization carries the overflow into the
// following month, matching how the date would be constructed upstream. The
// result is therefore never before today.
func NextBillingDate(billingDay int, now time.Time) civil.Date {
	year, month := now.Year(), now.Month()
	if billingDay < now.Day() {
		month++
	}
	next := time.Date(year, month, billingDay, 0, 0, 0, 0, now.Location())
	return civil.DateOf(next)
}

// UpcomingPayments computes each service's next billing date and returns the
// soonest five, ascending by date.
func UpcomingPayments(services []domain.Service, now time.Time) []domain.UpcomingPayment {
	upcoming := make([]domain.UpcomingPayment, 0, len(services))
	for _, svc := range services {
		upcoming = append(upcoming, domain.UpcomingPayment{
			Service:         svc,
			NextPaymentDate: NextBillingDate(svc.BillingDay, now),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextPaymentDate.Before(upcoming[j].NextPaymentDate)
	})

	if len(upcoming) > maxUpcomingPayments {
		upcoming = upcoming[:maxUpcomingPayments]
	}
	return upcoming
}
