package progress

import (
	"testing"
	"time"

	"finledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadline(d time.Time) *time.Time { return &d }

func TestComputeGoalProgress_CompletedBeatsDeadline(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	// deadline is tomorrow, but target reached: completed wins
	g := models.Goal{ID: 1, TargetAmount: 5000, CurrentAmount: 5000, Deadline: deadline(now.AddDate(0, 0, 1))}
	p := ComputeGoalProgress(g, now)

	assert.Equal(t, 100, p.Percentage)
	assert.Equal(t, GoalCompleted, p.Status)
	assert.Equal(t, 0.0, p.Remaining)
}

func TestComputeGoalProgress_AtRisk(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	// under 30 days left, under 70% saved
	g := models.Goal{TargetAmount: 1000, CurrentAmount: 500, Deadline: deadline(now.AddDate(0, 0, 20))}
	p := ComputeGoalProgress(g, now)

	require.NotNil(t, p.DaysLeft)
	assert.Equal(t, 20, *p.DaysLeft)
	assert.Equal(t, GoalAtRisk, p.Status)
}

func TestComputeGoalProgress_OnTrackBoundaries(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		goal models.Goal
	}{
		{"no deadline", models.Goal{TargetAmount: 1000, CurrentAmount: 100}},
		{"deadline exactly 30 days off", models.Goal{TargetAmount: 1000, CurrentAmount: 100, Deadline: deadline(now.AddDate(0, 0, 30))}},
		{"close deadline but 70 percent saved", models.Goal{TargetAmount: 1000, CurrentAmount: 700, Deadline: deadline(now.AddDate(0, 0, 5))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeGoalProgress(tt.goal, now)
			assert.Equal(t, GoalOnTrack, p.Status)
		})
	}
}

func TestComputeGoalProgress_DaysLeftAbsentWithoutDeadline(t *testing.T) {
	p := ComputeGoalProgress(models.Goal{TargetAmount: 100, CurrentAmount: 10}, time.Now())
	assert.Nil(t, p.DaysLeft)
}

func TestGoalProgress_OtherOwnerLooksLikeMissing(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	g := models.Goal{UserID: 2, Name: "car", TargetAmount: 9000, CurrentAmount: 100}
	require.NoError(t, db.Create(&g).Error)

	calc := NewCalculator(db)

	// caller 1 does not own goal: zero result, no error
	p, err := calc.GoalProgress(1, g.ID, now)
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.Equal(t, 0, p.Percentage)

	// owner sees real progress
	p, err = calc.GoalProgress(2, g.ID, now)
	require.NoError(t, err)
	assert.True(t, p.Found)
	assert.Equal(t, 1, p.Percentage)
}
