package rides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/example/ride-service/internal/models"
	"github.com/example/ride-service/internal/notify"
	"github.com/example/ride-service/internal/observability"
	"github.com/example/ride-service/internal/storage"
)

var (
	// ErrInvalidStatus rejects a transition to an unrecognized status.
	ErrInvalidStatus = errors.New("unrecognized status")
	// ErrInvalidQuote rejects a quote transition without a positive price.
	ErrInvalidQuote = errors.New("quote transition requires a positive price")
	// ErrBadRequest rejects an invalid public submission.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound surfaces a missing ride id to the caller.
	ErrNotFound = storage.ErrNotFound
)

// Payload is the data carried by one transition. Each transition kind
// has its own variant so validation is exhaustive.
type Payload interface{ isPayload() }

// SimplePayload is a bare status change.
type SimplePayload struct{}

func (SimplePayload) isPayload() {}

// QuotedPayload carries the price and optional route details for a
// quote transition. Optional fields are copied through as-is.
type QuotedPayload struct {
	Price           float64
	PickupEta       *int
	RideDuration    *int
	DistanceMiles   *float64
	DurationMinutes *float64
}

func (QuotedPayload) isPayload() {}

// Notifier fires SMS + live broadcast for a ride event. Best-effort by
// contract: the returned status never fails the transition.
type Notifier interface {
	NotifyTransition(ctx context.Context, ride *models.Ride, updatedBy string) notify.SMSStatus
	NotifyNewRide(ctx context.Context, ride *models.Ride) notify.SMSStatus
}

// Audit records transitions on an external trail.
type Audit interface {
	PublishTransition(ev models.TransitionEvent) error
}

// Payments optionally collects the fare when a ride completes.
type Payments interface {
	Configured() bool
	Charge(ctx context.Context, amountCents int64, currency, description string) (string, error)
}

// Service validates and applies status transitions to ride records.
// The machine is deliberately permissive: any recognized status is
// reachable from any other, including backward (quoted -> pending),
// because a single operator sometimes has to revert a mistake.
// Concurrent transitions on one ride are not ordered here; the last
// write wins.
type Service struct {
	Store    storage.RideStore
	Notify   Notifier // optional
	Audit    Audit    // optional
	Payments Payments // optional
	Logger   *slog.Logger
}

// CreateCommand is a public submission.
type CreateCommand struct {
	Name            string
	Phone           string
	PickupLocation  string
	DropoffLocation string
	ServiceType     models.ServiceType
	RequestedDate   string
	RequestedTime   string
	HoursNeeded     int
	StartTime       string
	EstimatedTotal  float64
	Notes           string
}

// Create stores a new ride in pending and alerts the business line and
// connected dashboards.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*models.Ride, notify.SMSStatus, error) {
	smsStatus := notify.SMSStatus{Success: true}
	if cmd.Name == "" || cmd.Phone == "" || cmd.PickupLocation == "" {
		return nil, smsStatus, fmt.Errorf("%w: name, phone and pickup are required", ErrBadRequest)
	}
	switch cmd.ServiceType {
	case models.ServiceHourly:
		if cmd.HoursNeeded <= 0 {
			return nil, smsStatus, fmt.Errorf("%w: hourly service requires positive hours_needed", ErrBadRequest)
		}
	case models.ServiceRegular, "":
		cmd.ServiceType = models.ServiceRegular
		if cmd.DropoffLocation == "" {
			return nil, smsStatus, fmt.Errorf("%w: dropoff is required for regular service", ErrBadRequest)
		}
		cmd.HoursNeeded = 0
	default:
		return nil, smsStatus, fmt.Errorf("%w: unknown service type %q", ErrBadRequest, cmd.ServiceType)
	}

	r := &models.Ride{
		Name:            cmd.Name,
		Phone:           NormalizePhone(cmd.Phone),
		PickupLocation:  cmd.PickupLocation,
		DropoffLocation: cmd.DropoffLocation,
		ServiceType:     cmd.ServiceType,
		RequestedDate:   cmd.RequestedDate,
		RequestedTime:   cmd.RequestedTime,
		HoursNeeded:     cmd.HoursNeeded,
		StartTime:       cmd.StartTime,
		EstimatedTotal:  cmd.EstimatedTotal,
		Notes:           cmd.Notes,
		Status:          models.StatusPending,
	}
	if err := s.Store.CreateRide(ctx, r); err != nil {
		return nil, smsStatus, err
	}
	s.audit(models.TransitionEvent{RideID: r.ID, ToStatus: models.StatusPending, Actor: "customer", At: time.Now()})
	if s.Notify != nil {
		smsStatus = s.Notify.NotifyNewRide(ctx, r)
	}
	return r, smsStatus, nil
}

// Transition validates and applies one status change. A rejected
// transition leaves the record untouched; a successful one returns the
// updated record even when its notification failed.
func (s *Service) Transition(ctx context.Context, id int64, newStatus models.Status, p Payload, updatedBy string) (*models.Ride, notify.SMSStatus, error) {
	smsStatus := notify.SMSStatus{Success: true}

	if !models.KnownStatus(newStatus) {
		observability.TransitionsRejected.Inc()
		return nil, smsStatus, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	var qf *storage.QuoteFields
	if newStatus == models.StatusQuoted {
		qp, ok := p.(QuotedPayload)
		if !ok {
			observability.TransitionsRejected.Inc()
			return nil, smsStatus, fmt.Errorf("%w: missing quote payload", ErrInvalidQuote)
		}
		if !(qp.Price > 0) || math.IsInf(qp.Price, 0) || math.IsNaN(qp.Price) {
			observability.TransitionsRejected.Inc()
			return nil, smsStatus, fmt.Errorf("%w: got %v", ErrInvalidQuote, qp.Price)
		}
		qf = &storage.QuoteFields{
			Price:           qp.Price,
			PickupEta:       qp.PickupEta,
			RideDuration:    qp.RideDuration,
			DistanceMiles:   qp.DistanceMiles,
			DurationMinutes: qp.DurationMinutes,
		}
	}

	old, err := s.Store.GetRide(ctx, id)
	if err != nil {
		return nil, smsStatus, err
	}

	updated, err := s.Store.UpdateStatus(ctx, id, newStatus, qf)
	if err != nil {
		return nil, smsStatus, err
	}
	observability.TransitionsTotal.WithLabelValues(string(newStatus)).Inc()
	s.audit(models.TransitionEvent{
		RideID: id, FromStatus: old.Status, ToStatus: newStatus, Actor: updatedBy, At: time.Now(),
	})

	if s.Notify != nil {
		smsStatus = s.Notify.NotifyTransition(ctx, updated, updatedBy)
	}
	if newStatus == models.StatusCompleted {
		s.collectFare(ctx, updated)
	}
	return updated, smsStatus, nil
}

// collectFare charges the quoted amount through the payment provider
// when one is configured. Best-effort: a failure is logged, the ride
// stays completed.
func (s *Service) collectFare(ctx context.Context, r *models.Ride) {
	if s.Payments == nil || !s.Payments.Configured() || r.QuotePrice == nil {
		return
	}
	cents := int64(math.Round(*r.QuotePrice * 100))
	desc := fmt.Sprintf("ride #%d on %s", r.ID, r.RequestedDate)
	ref, err := s.Payments.Charge(ctx, cents, "usd", desc)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("fare charge failed", "ride_id", r.ID, "error", err)
		}
		return
	}
	if s.Logger != nil {
		s.Logger.Info("fare charged", "ride_id", r.ID, "payment_ref", ref)
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Ride, error) {
	return s.Store.GetRide(ctx, id)
}

func (s *Service) List(ctx context.Context, status models.Status) ([]*models.Ride, error) {
	if status != "" && !models.KnownStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.Store.ListRides(ctx, status)
}

// PermanentDelete removes the record irrecoverably. This is the one
// destructive operation outside the state machine; soft deletion is a
// Transition to deleted.
func (s *Service) PermanentDelete(ctx context.Context, id int64, deletedBy string) error {
	if err := s.Store.DeleteRide(ctx, id); err != nil {
		return err
	}
	s.audit(models.TransitionEvent{RideID: id, ToStatus: "purged", Actor: deletedBy, At: time.Now()})
	return nil
}

func (s *Service) audit(ev models.TransitionEvent) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.PublishTransition(ev); err != nil && s.Logger != nil {
		s.Logger.Warn("audit publish failed", "ride_id", ev.RideID, "error", err)
	}
}

// NormalizePhone coerces US numbers to E.164. Inputs that already carry
// a country code pass through with formatting stripped.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(raw, "+"):
		return "+" + d
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	default:
		return "+" + d
	}
}
