package models

import "time"

// ServiceType distinguishes point-to-point rides from hourly bookings.
type ServiceType string

const (
	ServiceRegular ServiceType = "regular"
	ServiceHourly  ServiceType = "hourly"
)

// Status is the single active state of a ride request.
type Status string

const (
	StatusPending      Status = "pending"
	StatusQuoted       Status = "quoted"
	StatusConfirmed    Status = "confirmed"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
	StatusDeclined     Status = "declined"
	StatusNotAvailable Status = "not_available"
	StatusDeleted      Status = "deleted"
)

var knownStatuses = map[Status]bool{
	StatusPending:      true,
	StatusQuoted:       true,
	StatusConfirmed:    true,
	StatusCompleted:    true,
	StatusCancelled:    true,
	StatusDeclined:     true,
	StatusNotAvailable: true,
	StatusDeleted:      true,
}

// KnownStatus reports whether s is one of the recognized ride statuses.
func KnownStatus(s Status) bool { return knownStatuses[s] }

// Ride is the central entity: one customer request, one active status.
// Quote fields are nil until a quote transition sets them; the operator
// may revert a ride to pending without clearing them.
type Ride struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"` // E.164
	PickupLocation  string      `json:"pickup_location"`
	DropoffLocation string      `json:"dropoff_location,omitempty"` // absent for hourly
	ServiceType     ServiceType `json:"service_type"`
	RequestedDate   string      `json:"requested_date"` // calendar date, no tz conversion
	RequestedTime   string      `json:"requested_time"` // local wall clock

	// hourly variant only
	HoursNeeded    int     `json:"hours_needed,omitempty"`
	StartTime      string  `json:"start_time,omitempty"`
	EstimatedTotal float64 `json:"estimated_total,omitempty"`
	Notes          string  `json:"notes,omitempty"`

	QuotePrice      *float64 `json:"quote_price,omitempty"`
	PickupEta       *int     `json:"pickup_eta,omitempty"`    // minutes
	RideDuration    *int     `json:"ride_duration,omitempty"` // minutes
	DistanceMiles   *float64 `json:"distance_miles,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"` // drive time

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is the live message fanned out to connected dashboard and driver
// sessions so other clients can refresh without polling.
type Event struct {
	Type      string `json:"type"`
	RideID    int64  `json:"ride_id"`
	Status    Status `json:"status"`
	UpdatedBy string `json:"updated_by,omitempty"` // acting admin identity
}

const (
	EventNewRide     = "new_ride_request"
	EventRideUpdated = "ride_request_updated"
)

// TransitionEvent is the audit record published for every status change.
type TransitionEvent struct {
	RideID     int64     `json:"ride_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}
