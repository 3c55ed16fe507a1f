package routes

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/example/ride-service/internal/observability"
	"github.com/example/ride-service/internal/pricing"
)

// Quote is a priced route: where the distance came from, what it costs.
type Quote struct {
	Leg
	DistanceText string
	DurationText string
	Estimated    bool
	Pricing      pricing.Result
}

// Resolver produces a Quote for a pickup/dropoff pair. It prefers the
// authoritative Source and falls back to the keyword estimator on any
// failure; the fallback IS the error handling, so Resolve never fails.
type Resolver struct {
	Source Source       // optional; nil means unconfigured
	Cache  *Cache       // optional
	Logger *slog.Logger // optional
}

func (r *Resolver) Resolve(ctx context.Context, pickup, dropoff string) Quote {
	if r.Source != nil {
		if r.Cache != nil {
			if leg, ok := r.Cache.Get(ctx, pickup, dropoff); ok {
				observability.QuotesTotal.WithLabelValues("cache").Inc()
				return r.quote(leg, false)
			}
		}
		leg, err := r.Source.Route(ctx, pickup, dropoff)
		if err == nil {
			if r.Cache != nil {
				r.Cache.Set(ctx, pickup, dropoff, leg)
			}
			observability.QuotesTotal.WithLabelValues("authoritative").Inc()
			return r.quote(leg, false)
		}
		if r.Logger != nil {
			r.Logger.Warn("route lookup failed, falling back to estimator",
				"pickup", pickup, "dropoff", dropoff, "error", err)
		}
	}
	observability.QuotesTotal.WithLabelValues("estimated").Inc()
	return r.quote(Estimate(pickup, dropoff), true)
}

func (r *Resolver) quote(leg Leg, estimated bool) Quote {
	return Quote{
		Leg:          leg,
		DistanceText: fmt.Sprintf("%.1f mi", leg.Miles),
		DurationText: fmt.Sprintf("%d min", int(math.Round(leg.Minutes))),
		Estimated:    estimated,
		Pricing:      pricing.Price(leg.Miles, leg.Minutes),
	}
}
