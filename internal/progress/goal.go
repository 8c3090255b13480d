package progress

import (
	"errors"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"

	"gorm.io/gorm"
)

// Goal status tags.
const (
	GoalOnTrack   = "on-track"
	GoalAtRisk    = "at-risk"
	GoalCompleted = "completed"
)

// GoalProgress is the derived state of a savings goal.
type GoalProgress struct {
	Found         bool    `json:"found"`
	GoalID        uint    `json:"goal_id,omitempty"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Remaining     float64 `json:"remaining"`
	Percentage    int     `json:"percentage"`
	DaysLeft      *int    `json:"days_left,omitempty"`
	Status        string  `json:"status"`
}

// ComputeGoalProgress derives progress for a goal row. Completed wins over
// the deadline check regardless of days left; at-risk needs a deadline
// under 30 days away with progress under 70%.
func ComputeGoalProgress(g models.Goal, now time.Time) GoalProgress {
	pct := roundPct(g.CurrentAmount, g.TargetAmount)

	var daysLeft *int
	if g.Deadline != nil {
		d := ceilDays(now, *g.Deadline)
		daysLeft = &d
	}

	status := GoalOnTrack
	switch {
	case pct >= 100:
		status = GoalCompleted
	case daysLeft != nil && *daysLeft < 30 && pct < 70:
		status = GoalAtRisk
	}

	return GoalProgress{
		Found:         true,
		GoalID:        g.ID,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Remaining:     g.TargetAmount - g.CurrentAmount,
		Percentage:    pct,
		DaysLeft:      daysLeft,
		Status:        status,
	}
}

// GoalProgress loads the caller's goal and derives its progress.
// A goal that does not exist, or belongs to someone else, yields
// Found=false with zero values.
func (c *Calculator) GoalProgress(userID, goalID uint, now time.Time) (GoalProgress, error) {
	var g models.Goal
	err := c.db.Where("id = ? AND user_id = ?", goalID, userID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GoalProgress{Status: GoalOnTrack}, nil
	}
	if err != nil {
		return GoalProgress{}, apperr.Internal(err)
	}
	return ComputeGoalProgress(g, now), nil
}
