package progress

import (
	"errors"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"

	"gorm.io/gorm"
)

// Occasion status tags.
const (
	OccasionUpcoming = "upcoming"
	OccasionSoon     = "soon"
	OccasionToday    = "today"
	OccasionPassed   = "passed"
)

// OccasionProgress is the derived state of a date-anchored event.
type OccasionProgress struct {
	Found      bool    `json:"found"`
	OccasionID uint    `json:"occasion_id,omitempty"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage int     `json:"percentage"`
	DaysUntil  int     `json:"days_until"`
	Status     string  `json:"status"`
}

// ComputeOccasionProgress derives progress for an occasion row. Spent is
// the stored running total; the percentage is 0 for a zero budget.
func ComputeOccasionProgress(o models.Occasion, now time.Time) OccasionProgress {
	days := ceilDays(now, o.Date)

	status := OccasionUpcoming
	switch {
	case days < 0:
		status = OccasionPassed
	case days == 0:
		status = OccasionToday
	case days <= 7:
		status = OccasionSoon
	}

	return OccasionProgress{
		Found:      true,
		OccasionID: o.ID,
		Budget:     o.Budget,
		Spent:      o.Spent,
		Remaining:  o.Budget - o.Spent,
		Percentage: roundPct(o.Spent, o.Budget),
		DaysUntil:  days,
		Status:     status,
	}
}

// OccasionProgress loads the caller's occasion and derives its progress.
// Missing or other-owner occasions yield Found=false with zero values.
func (c *Calculator) OccasionProgress(userID, occasionID uint, now time.Time) (OccasionProgress, error) {
	var o models.Occasion
	err := c.db.Where("id = ? AND user_id = ?", occasionID, userID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OccasionProgress{Status: OccasionUpcoming}, nil
	}
	if err != nil {
		return OccasionProgress{}, apperr.Internal(err)
	}
	return ComputeOccasionProgress(o, now), nil
}
