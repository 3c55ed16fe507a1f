package notify

import (
	"fmt"
	"strings"

	"github.com/example/ride-service/internal/models"
)

// customerMessage picks the SMS template for the customer by status.
// The second return is false for statuses that never message the
// customer (pending, deleted).
func customerMessage(r *models.Ride) (string, bool) {
	firstName := firstWord(r.Name)
	switch r.Status {
	case models.StatusQuoted:
		var b strings.Builder
		fmt.Fprintf(&b, "Hi %s! Your ride on %s at %s is quoted at $%.2f.", firstName, r.RequestedDate, r.RequestedTime, deref(r.QuotePrice))
		if r.PickupEta != nil {
			fmt.Fprintf(&b, " Pickup ETA is about %d minutes.", *r.PickupEta)
		}
		if r.RideDuration != nil {
			fmt.Fprintf(&b, " Estimated ride time is %d minutes.", *r.RideDuration)
		}
		b.WriteString(" Reply YES to confirm.")
		return b.String(), true
	case models.StatusConfirmed:
		var b strings.Builder
		fmt.Fprintf(&b, "Hi %s, your ride on %s at %s is confirmed!", firstName, r.RequestedDate, r.RequestedTime)
		if r.PickupEta != nil {
			fmt.Fprintf(&b, " Your driver will arrive in about %d minutes of your pickup time.", *r.PickupEta)
		}
		if r.QuotePrice != nil {
			fmt.Fprintf(&b, " Fare: $%.2f.", *r.QuotePrice)
		}
		return b.String(), true
	case models.StatusDeclined:
		return fmt.Sprintf("Hi %s, unfortunately we can't take your ride request for %s at %s. Sorry, and we hope to serve you another time.",
			firstName, r.RequestedDate, r.RequestedTime), true
	case models.StatusNotAvailable:
		return fmt.Sprintf("Hi %s, no driver is available for %s at %s. Please try a different time and we'll do our best.",
			firstName, r.RequestedDate, r.RequestedTime), true
	case models.StatusCompleted:
		if r.QuotePrice != nil {
			return fmt.Sprintf("Thanks for riding with us, %s! Total fare: $%.2f. See you next time.", firstName, *r.QuotePrice), true
		}
		return fmt.Sprintf("Thanks for riding with us, %s! See you next time.", firstName), true
	case models.StatusCancelled:
		return fmt.Sprintf("Hi %s, your ride for %s at %s has been cancelled. Reply or call us if that's unexpected.",
			firstName, r.RequestedDate, r.RequestedTime), true
	default:
		return "", false
	}
}

// driverMessage carries full trip details to the driver when a ride is
// confirmed.
func driverMessage(r *models.Ride) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Confirmed ride #%d: %s (%s) on %s at %s.", r.ID, r.Name, r.Phone, r.RequestedDate, r.RequestedTime)
	fmt.Fprintf(&b, " Pickup: %s.", r.PickupLocation)
	if r.DropoffLocation != "" {
		fmt.Fprintf(&b, " Dropoff: %s.", r.DropoffLocation)
	}
	if r.ServiceType == models.ServiceHourly {
		fmt.Fprintf(&b, " Hourly service, %d hour(s) starting %s.", r.HoursNeeded, r.StartTime)
	}
	if r.QuotePrice != nil {
		fmt.Fprintf(&b, " Quoted: $%.2f.", *r.QuotePrice)
	}
	if r.DistanceMiles != nil && r.DurationMinutes != nil {
		fmt.Fprintf(&b, " Trip: %.1f mi, ~%.0f min.", *r.DistanceMiles, *r.DurationMinutes)
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, " Notes: %s", r.Notes)
	}
	return b.String()
}

// newRequestMessage alerts the business line about a fresh submission.
func newRequestMessage(r *models.Ride) string {
	if r.ServiceType == models.ServiceHourly {
		return fmt.Sprintf("New hourly request #%d from %s (%s): %d hour(s) on %s starting %s, pickup %s.",
			r.ID, r.Name, r.Phone, r.HoursNeeded, r.RequestedDate, r.StartTime, r.PickupLocation)
	}
	return fmt.Sprintf("New ride request #%d from %s (%s): %s at %s, %s -> %s.",
		r.ID, r.Name, r.Phone, r.RequestedDate, r.RequestedTime, r.PickupLocation, r.DropoffLocation)
}

func firstWord(s string) string {
	if i := strings.IndexByte(strings.TrimSpace(s), ' '); i > 0 {
		return strings.TrimSpace(s)[:i]
	}
	return strings.TrimSpace(s)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
