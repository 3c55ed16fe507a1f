package routes

import "strings"

// Leg is a road distance / drive time pair.
type Leg struct {
	Miles   float64 `json:"miles"`
	Minutes float64 `json:"minutes"`
}

// localityTable maps known service-area keywords to fixed distance/time
// pairs. This is business data for the Jacksonville service area, tuned
// from the operator's trip history; swap the table to relocate the
// service.
var localityTable = []struct {
	keyword string
	leg     Leg
}{
	{"st augustine", Leg{35, 45}},
	{"nocatee", Leg{18, 28}},
	{"orange park", Leg{16, 25}},
	{"ponte vedra", Leg{14, 22}},
	{"mandarin", Leg{12, 20}},
	{"southside", Leg{9, 16}},
	{"arlington", Leg{8, 14}},
	{"riverside", Leg{7, 14}},
	{"san marco", Leg{6, 12}},
}

var medicalKeywords = []string{
	"mayo clinic", "baptist", "st vincent", "uf health", "memorial hospital",
	"hospital", "medical center",
}

// Estimate produces an approximate road distance and drive time for two
// free-text locations. It never fails: an ordered set of keyword
// heuristics falls through to a catch-all pair meaning "somewhere within
// the local service area". It is a fallback for when no routing provider
// is reachable, not a geocoder.
func Estimate(pickup, dropoff string) Leg {
	from := normalize(pickup)
	to := normalize(dropoff)

	// Airport runs are the most common out-of-town trip. Beach pickups
	// sit farther from the airport than the city core.
	if strings.Contains(to, "airport") {
		if strings.Contains(from, "beach") {
			return Leg{18, 25}
		}
		return Leg{12, 18}
	}

	for _, kw := range medicalKeywords {
		if strings.Contains(from, kw) || strings.Contains(to, kw) {
			return Leg{5, 10}
		}
	}

	fromBeach := strings.Contains(from, "beach")
	toBeach := strings.Contains(to, "beach")
	switch {
	case fromBeach && toBeach:
		return Leg{4, 10}
	case fromBeach || toBeach:
		return Leg{10, 20}
	}

	for _, loc := range localityTable {
		if strings.Contains(to, loc.keyword) || strings.Contains(from, loc.keyword) {
			return loc.leg
		}
	}

	// Somewhere within the local service area.
	return Leg{8, 15}
}

// normalize lowercases and strips everything but letters so street
// numbers and punctuation never defeat a keyword match.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
