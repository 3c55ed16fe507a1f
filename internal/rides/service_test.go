package rides

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ride-service/internal/models"
	"github.com/example/ride-service/internal/notify"
	"github.com/example/ride-service/internal/storage"
)

type fakeNotifier struct {
	transitions []models.Status
	newRides    int
	smsStatus   notify.SMSStatus
}

func (f *fakeNotifier) NotifyTransition(ctx context.Context, ride *models.Ride, updatedBy string) notify.SMSStatus {
	f.transitions = append(f.transitions, ride.Status)
	return f.smsStatus
}

func (f *fakeNotifier) NotifyNewRide(ctx context.Context, ride *models.Ride) notify.SMSStatus {
	f.newRides++
	return f.smsStatus
}

type fakeAudit struct{ events []models.TransitionEvent }

func (f *fakeAudit) PublishTransition(ev models.TransitionEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakePayments struct {
	enabled bool
	charges []int64
	err     error
}

func (f *fakePayments) Configured() bool { return f.enabled }
func (f *fakePayments) Charge(ctx context.Context, cents int64, currency, desc string) (string, error) {
	f.charges = append(f.charges, cents)
	return "pi_test", f.err
}

func newTestService() (*Service, *fakeNotifier, *fakeAudit) {
	n := &fakeNotifier{smsStatus: notify.SMSStatus{Success: true}}
	a := &fakeAudit{}
	return &Service{Store: storage.NewMemoryStore(), Notify: n, Audit: a}, n, a
}

func createRide(t *testing.T, s *Service) *models.Ride {
	t.Helper()
	r, _, err := s.Create(context.Background(), CreateCommand{
		Name: "Jane Doe", Phone: "(904) 555-1234",
		PickupLocation: "123 Main St", DropoffLocation: "Airport",
		ServiceType: models.ServiceRegular, RequestedDate: "2026-09-02", RequestedTime: "9:30 AM",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return r
}

func TestCreateStartsPendingAndNotifies(t *testing.T) {
	s, n, a := newTestService()
	r := createRide(t, s)

	if r.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", r.Status)
	}
	if r.Phone != "+19045551234" {
		t.Errorf("phone = %s, want E.164", r.Phone)
	}
	if n.newRides != 1 {
		t.Errorf("newRides = %d, want 1", n.newRides)
	}
	if len(a.events) != 1 || a.events[0].ToStatus != models.StatusPending {
		t.Errorf("audit = %+v, want pending creation event", a.events)
	}
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := s.Create(ctx, CreateCommand{Name: "X", Phone: "1", PickupLocation: "a", ServiceType: models.ServiceRegular})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("regular without dropoff: err = %v, want ErrBadRequest", err)
	}

	_, _, err = s.Create(ctx, CreateCommand{Name: "X", Phone: "1", PickupLocation: "a", ServiceType: models.ServiceHourly})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("hourly without hours: err = %v, want ErrBadRequest", err)
	}

	_, _, err = s.Create(ctx, CreateCommand{Name: "X", Phone: "1", PickupLocation: "a", ServiceType: models.ServiceHourly, HoursNeeded: 3, StartTime: "2:00 PM"})
	if err != nil {
		t.Errorf("valid hourly: err = %v", err)
	}
}

func TestTransitionInvalidStatus(t *testing.T) {
	s, n, _ := newTestService()
	r := createRide(t, s)

	_, _, err := s.Transition(context.Background(), r.ID, "bogus", SimplePayload{}, "admin")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	got, _ := s.Get(context.Background(), r.ID)
	if got.Status != models.StatusPending {
		t.Fatalf("record mutated on rejected transition: %s", got.Status)
	}
	if len(n.transitions) != 0 {
		t.Fatal("notifier fired on rejected transition")
	}
}

func TestTransitionInvalidQuote(t *testing.T) {
	s, _, _ := newTestService()
	r := createRide(t, s)
	ctx := context.Background()

	cases := []Payload{
		SimplePayload{},
		QuotedPayload{},
		QuotedPayload{Price: -5},
	}
	for _, p := range cases {
		if _, _, err := s.Transition(ctx, r.ID, models.StatusQuoted, p, "admin"); !errors.Is(err, ErrInvalidQuote) {
			t.Errorf("payload %#v: err = %v, want ErrInvalidQuote", p, err)
		}
	}
	got, _ := s.Get(ctx, r.ID)
	if got.Status != models.StatusPending || got.QuotePrice != nil {
		t.Fatalf("record mutated on rejected quote: %+v", got)
	}
}

func TestTransitionQuoteThenRevertKeepsFields(t *testing.T) {
	s, _, _ := newTestService()
	r := createRide(t, s)
	ctx := context.Background()

	eta := 15
	updated, sms, err := s.Transition(ctx, r.ID, models.StatusQuoted, QuotedPayload{Price: 25, PickupEta: &eta}, "admin")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !sms.Success {
		t.Fatalf("smsStatus = %+v", sms)
	}
	if updated.Status != models.StatusQuoted || updated.QuotePrice == nil || *updated.QuotePrice != 25 {
		t.Fatalf("quoted ride = %+v", updated)
	}

	// backward transition is allowed and does not clear quote fields
	reverted, _, err := s.Transition(ctx, r.ID, models.StatusPending, SimplePayload{}, "admin")
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", reverted.Status)
	}
	if reverted.QuotePrice == nil || *reverted.QuotePrice != 25 || reverted.PickupEta == nil || *reverted.PickupEta != 15 {
		t.Fatalf("quote fields cleared on reversion: %+v", reverted)
	}
}

func TestTransitionNotFound(t *testing.T) {
	s, _, _ := newTestService()
	_, _, err := s.Transition(context.Background(), 999, models.StatusConfirmed, SimplePayload{}, "admin")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTransitionSMSFailureDoesNotRollBack(t *testing.T) {
	s, n, _ := newTestService()
	n.smsStatus = notify.SMSStatus{Success: false, Error: "twilio down"}
	r := createRide(t, s)
	ctx := context.Background()

	updated, sms, err := s.Transition(ctx, r.ID, models.StatusQuoted, QuotedPayload{Price: 30}, "admin")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if sms.Success {
		t.Fatal("expected failed smsStatus")
	}
	if updated.Status != models.StatusQuoted {
		t.Fatalf("status = %s, want quoted despite sms failure", updated.Status)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	s, _, _ := newTestService()
	r := createRide(t, s)
	ctx := context.Background()

	if _, _, err := s.Transition(ctx, r.ID, models.StatusDeleted, SimplePayload{}, "admin"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 0 {
		t.Fatalf("soft-deleted ride still listed: %d", len(all))
	}
	deleted, _ := s.List(ctx, models.StatusDeleted)
	if len(deleted) != 1 {
		t.Fatalf("deleted filter returned %d rides", len(deleted))
	}

	restored, _, err := s.Transition(ctx, r.ID, models.StatusPending, SimplePayload{}, "admin")
	if err != nil || restored.Status != models.StatusPending {
		t.Fatalf("restore failed: %v %+v", err, restored)
	}
}

func TestPermanentDelete(t *testing.T) {
	s, _, a := newTestService()
	r := createRide(t, s)
	ctx := context.Background()

	if err := s.PermanentDelete(ctx, r.ID, "admin"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ride still readable after permanent delete: %v", err)
	}
	if err := s.PermanentDelete(ctx, r.ID, "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if len(a.events) == 0 || a.events[len(a.events)-1].ToStatus != "purged" {
		t.Fatalf("audit missing purge event: %+v", a.events)
	}
}

func TestCompletedTransitionChargesFare(t *testing.T) {
	s, _, _ := newTestService()
	p := &fakePayments{enabled: true}
	s.Payments = p
	r := createRide(t, s)
	ctx := context.Background()

	if _, _, err := s.Transition(ctx, r.ID, models.StatusQuoted, QuotedPayload{Price: 16}, "admin"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Transition(ctx, r.ID, models.StatusCompleted, SimplePayload{}, "admin"); err != nil {
		t.Fatal(err)
	}
	if len(p.charges) != 1 || p.charges[0] != 1600 {
		t.Fatalf("charges = %v, want [1600]", p.charges)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct{ in, want string }{
		{"(904) 555-1234", "+19045551234"},
		{"9045551234", "+19045551234"},
		{"19045551234", "+19045551234"},
		{"+44 20 7946 0958", "+442079460958"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
