package progress

import (
	"testing"
	"time"

	"finledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOccasionProgress_Statuses(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2025, 3, 15+offset, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		date      time.Time
		daysUntil int
		status    string
	}{
		{"yesterday", day(-1), -1, OccasionPassed},
		{"long passed", day(-10), -10, OccasionPassed},
		{"today", day(0), 0, OccasionToday},
		{"tomorrow", day(1), 1, OccasionSoon},
		{"in a week", day(7), 7, OccasionSoon},
		{"in eight days", day(8), 8, OccasionUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeOccasionProgress(models.Occasion{Date: tt.date, Budget: 100}, now)
			assert.Equal(t, tt.daysUntil, p.DaysUntil)
			assert.Equal(t, tt.status, p.Status)
		})
	}
}

func TestComputeOccasionProgress_ZeroBudget(t *testing.T) {
	p := ComputeOccasionProgress(models.Occasion{Spent: 250}, time.Now())
	assert.Equal(t, 0, p.Percentage)
	assert.Equal(t, -250.0, p.Remaining)
}

func TestComputeOccasionProgress_Percentage(t *testing.T) {
	p := ComputeOccasionProgress(models.Occasion{Budget: 400, Spent: 100}, time.Now())
	assert.Equal(t, 25, p.Percentage)
	assert.Equal(t, 300.0, p.Remaining)
}

func TestOccasionProgress_MissingIsZeroResult(t *testing.T) {
	db := openTestDB(t)
	calc := NewCalculator(db)

	p, err := calc.OccasionProgress(1, 999, time.Now())
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.Equal(t, OccasionUpcoming, p.Status)
}
