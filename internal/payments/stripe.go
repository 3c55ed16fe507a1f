package payments

import (
	"context"
	"os"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeClient is a thin wrapper around stripe-go for collecting the
// final fare once a ride completes.
type StripeClient struct{}

// NewStripeClient initializes the stripe client with the STRIPE_API_KEY env var.
func NewStripeClient() *StripeClient {
	stripe.Key = os.Getenv("STRIPE_API_KEY")
	return &StripeClient{}
}

// Configured reports whether an API key is present; without one the
// business collects payment off-platform.
func (s *StripeClient) Configured() bool { return stripe.Key != "" }

// Charge creates a PaymentIntent for the fare in cents and returns its
// ID. Invoked best-effort on ride completion; a failure is logged by
// the caller and never rolls back the completed status.
func (s *StripeClient) Charge(ctx context.Context, amountCents int64, currency, description string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}
