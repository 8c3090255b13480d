// Package notify writes informational notification records on mutation
// events. Emission is best-effort: a failed write is logged and never
// fails the mutation that triggered it.
package notify

import (
	"encoding/json"
	"fmt"

	"finledger/internal/logging"
	"finledger/internal/models"
	"finledger/internal/progress"

	"gorm.io/gorm"
)

// Emitter persists notifications.
type Emitter struct {
	db  *gorm.DB
	log *logging.Logger
}

func NewEmitter(db *gorm.DB, log *logging.Logger) *Emitter {
	return &Emitter{db: db, log: log.WithComponent("notify")}
}

// Emit writes one notification. Payload is marshalled to JSON; a nil
// payload leaves the column empty.
func (e *Emitter) Emit(userID uint, typ, title, description string, payload any) {
	n := models.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Description: description,
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			e.log.Warn("marshal notification payload", "type", typ, "error", err)
		} else {
			n.Payload = string(b)
		}
	}
	if err := e.db.Create(&n).Error; err != nil {
		e.log.Warn("write notification", "type", typ, "user_id", userID, "error", err)
	}
}

// ExpenseAdded fires after a new expense is recorded.
func (e *Emitter) ExpenseAdded(userID uint, exp *models.Expense) {
	e.Emit(userID, models.NotifyExpenseAdded,
		"Expense recorded",
		fmt.Sprintf("Recorded %.2f in category %d", exp.Amount, exp.CategoryID),
		map[string]any{"expense_id": exp.ID, "category_id": exp.CategoryID, "amount": exp.Amount},
	)
}

// BudgetThreshold fires when a mutation leaves a budget at or past 80%
// usage. Fires on every such mutation, not deduplicated.
func (e *Emitter) BudgetThreshold(userID uint, usage progress.BudgetUsage) {
	title := "Budget almost used up"
	if usage.Status == progress.BudgetOver {
		title = "Budget exceeded"
	}
	e.Emit(userID, models.NotifyBudgetThreshold,
		title,
		fmt.Sprintf("Category %d is at %d%% of its monthly budget", usage.CategoryID, usage.Percentage),
		usage,
	)
}

// GoalCompleted fires when a contribution crosses the goal target.
func (e *Emitter) GoalCompleted(userID uint, g *models.Goal) {
	e.Emit(userID, models.NotifyGoalCompleted,
		"Goal completed",
		fmt.Sprintf("%q reached its target of %.2f", g.Name, g.TargetAmount),
		map[string]any{"goal_id": g.ID, "target_amount": g.TargetAmount},
	)
}

// SubscriptionEvent mirrors a payment-provider event to the user.
func (e *Emitter) SubscriptionEvent(userID uint, eventType, status string) {
	e.Emit(userID, models.NotifySubscription,
		"Subscription updated",
		fmt.Sprintf("Subscription is now %s", status),
		map[string]any{"event_type": eventType, "status": status},
	)
}
