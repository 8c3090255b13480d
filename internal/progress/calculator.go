// Package progress derives budget, goal and occasion progress from
// already-fetched rows. The Compute* functions are pure; Calculator adds
// the store lookups in front of them. Absence of a row is reported as a
// zero-valued result with Found=false, while store failures propagate as
// errors, so callers can tell "no data" from "computation failed".
package progress

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Calculator fetches rows and applies the pure computations.
type Calculator struct {
	db *gorm.DB
}

func NewCalculator(db *gorm.DB) *Calculator {
	return &Calculator{db: db}
}

// roundPct computes round(num/den*100) as a whole percent, 0 when den is 0.
func roundPct(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den * 100))
}

// ceilDays is the whole-day distance from now to t, rounded up.
// Negative when t is in the past, 0 when t falls within the next rounding
// window of now.
func ceilDays(now, t time.Time) int {
	ms := t.Sub(now).Milliseconds()
	return int(math.Ceil(float64(ms) / 86_400_000))
}

// startOfMonth returns the first calendar day of now's month at midnight,
// in now's location (server-local time, no timezone normalization).
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
