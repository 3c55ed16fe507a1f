package notify

import (
	"context"
	"log/slog"

	"github.com/example/ride-service/internal/models"
	"github.com/example/ride-service/internal/observability"
)

// Broadcaster publishes a live event to all connected sessions.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// SMSStatus reports whether notification delivery worked. It rides
// along with a successful transition response and is never an error.
type SMSStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Router maps a ride event to its recipients: a customer SMS template
// chosen by status, a driver SMS on confirmation, a business-line alert
// for new submissions, and a live broadcast to connected clients.
// Everything here is best-effort; a failure is logged and reported but
// never blocks or rolls back the triggering operation.
type Router struct {
	SMS           SMSSender   // nil disables SMS
	Live          Broadcaster // nil disables broadcast
	DriverPhone   string      // E.164
	BusinessPhone string      // E.164
	Logger        *slog.Logger
}

// NotifyTransition fires the notifications for a completed status
// change. updatedBy identifies the acting admin so other connected
// clients can tell their own writes from someone else's.
func (r *Router) NotifyTransition(ctx context.Context, ride *models.Ride, updatedBy string) SMSStatus {
	status := SMSStatus{Success: true}

	if r.SMS != nil {
		if body, ok := customerMessage(ride); ok {
			if err := r.SMS.Send(ctx, ride.Phone, body); err != nil {
				status = r.smsFailed("customer", ride, err)
			}
		}
		if ride.Status == models.StatusConfirmed && r.DriverPhone != "" {
			if err := r.SMS.Send(ctx, r.DriverPhone, driverMessage(ride)); err != nil {
				status = r.smsFailed("driver", ride, err)
			}
		}
	}

	if r.Live != nil {
		r.Live.Broadcast(models.Event{
			Type:      models.EventRideUpdated,
			RideID:    ride.ID,
			Status:    ride.Status,
			UpdatedBy: updatedBy,
		})
	}
	return status
}

// NotifyNewRide alerts the business line and connected dashboards about
// a fresh public submission.
func (r *Router) NotifyNewRide(ctx context.Context, ride *models.Ride) SMSStatus {
	status := SMSStatus{Success: true}

	if r.SMS != nil && r.BusinessPhone != "" {
		if err := r.SMS.Send(ctx, r.BusinessPhone, newRequestMessage(ride)); err != nil {
			status = r.smsFailed("business", ride, err)
		}
	}

	if r.Live != nil {
		r.Live.Broadcast(models.Event{
			Type:   models.EventNewRide,
			RideID: ride.ID,
			Status: ride.Status,
		})
	}
	return status
}

func (r *Router) smsFailed(recipient string, ride *models.Ride, err error) SMSStatus {
	observability.SMSFailures.Inc()
	if r.Logger != nil {
		r.Logger.Error("sms send failed", "recipient", recipient, "ride_id", ride.ID, "status", ride.Status, "error", err)
	}
	return SMSStatus{Success: false, Error: err.Error()}
}
