package pricing

import (
	"fmt"
	"math"
)

// TripType is the fare band a trip falls into.
type TripType string

const (
	TripShort  TripType = "short"
	TripMedium TripType = "medium"
	TripLong   TripType = "long"
)

// Fare rate table. The short-trip check runs first regardless of mileage;
// the time boundary is exclusive (7 minutes is not short).
const (
	shortMileLimit   = 5.0
	shortMinuteLimit = 7.0
	mediumMileLimit  = 15.0

	shortMileRate    = 1.50
	shortMinuteRate  = 1.25
	mediumMileRate   = 1.00
	mediumMultiplier = 1.3
	longMileRate     = 0.75
	longMultiplier   = 1.2

	minimumFare = 6.00
)

// Result is the outcome of one fare computation. It is ephemeral: quote
// transitions copy the relevant fields onto the ride record.
type Result struct {
	Miles          float64  `json:"miles"`
	Minutes        float64  `json:"minutes"`
	TripType       TripType `json:"tripType"`
	SuggestedPrice float64  `json:"suggestedPrice"`
	ExactPrice     float64  `json:"exactPrice"`
	Calculation    string   `json:"calculation"`
}

// Price computes a suggested fare for the given road distance and drive
// time. Pure and deterministic; negative inputs are treated as zero.
// SuggestedPrice is always rounded up to the nearest $0.50; ExactPrice
// keeps the unrounded value at 2-decimal precision. The Calculation
// string is shown to the admin and states the exact arithmetic used.
func Price(miles, minutes float64) Result {
	if miles < 0 {
		miles = 0
	}
	if minutes < 0 {
		minutes = 0
	}

	var (
		exact float64
		tier  TripType
		calc  string
	)

	switch {
	case miles < shortMileLimit || minutes < shortMinuteLimit:
		tier = TripShort
		byMiles := miles * shortMileRate
		byTime := minutes * shortMinuteRate
		winner := "mileage"
		exact = byMiles
		if byTime > byMiles {
			winner = "time"
			exact = byTime
		}
		calc = fmt.Sprintf("short trip: max(%.1f mi x $%.2f = $%.2f, %.1f min x $%.2f = $%.2f); %s rate wins",
			miles, shortMileRate, byMiles, minutes, shortMinuteRate, byTime, winner)
		if exact < minimumFare {
			exact = minimumFare
			calc += fmt.Sprintf("; below $%.2f minimum fare, charging the minimum", minimumFare)
		}
	case miles <= mediumMileLimit:
		tier = TripMedium
		exact = miles * mediumMileRate * mediumMultiplier
		calc = fmt.Sprintf("medium trip: %.1f mi x $%.2f x %.1f = $%.2f",
			miles, mediumMileRate, mediumMultiplier, exact)
	default:
		tier = TripLong
		exact = miles * longMileRate * longMultiplier
		calc = fmt.Sprintf("long trip: %.1f mi x $%.2f x %.1f = $%.2f",
			miles, longMileRate, longMultiplier, exact)
	}

	exact = round2(exact)
	suggested := roundUpHalf(exact)
	calc += fmt.Sprintf("; rounded up to $%.2f", suggested)

	return Result{
		Miles:          miles,
		Minutes:        minutes,
		TripType:       tier,
		SuggestedPrice: suggested,
		ExactPrice:     exact,
		Calculation:    calc,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// roundUpHalf rounds up to the nearest $0.50.
func roundUpHalf(v float64) float64 { return math.Ceil(v*2) / 2 }
