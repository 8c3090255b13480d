package progress

import (
	"errors"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"

	"gorm.io/gorm"
)

// Budget status tags.
const (
	BudgetUnder = "under"
	BudgetNear  = "near"
	BudgetOver  = "over"
)

// BudgetUsage is the derived state of one category budget for the
// current calendar month.
type BudgetUsage struct {
	Found         bool    `json:"found"`
	BudgetID      uint    `json:"budget_id,omitempty"`
	CategoryID    uint    `json:"category_id"`
	MonthlyAmount float64 `json:"monthly_amount"`
	Spent         float64 `json:"spent"`
	Remaining     float64 `json:"remaining"`
	Percentage    int     `json:"percentage"`
	Status        string  `json:"status"`
}

// ComputeBudgetUsage derives usage from a budget row and the summed
// this-month spend. The percentage is rounded first; status thresholds
// compare against the rounded value.
func ComputeBudgetUsage(b models.Budget, spent float64) BudgetUsage {
	pct := roundPct(spent, b.MonthlyAmount)
	status := BudgetUnder
	switch {
	case pct >= 100:
		status = BudgetOver
	case pct >= 80:
		status = BudgetNear
	}
	return BudgetUsage{
		Found:         true,
		BudgetID:      b.ID,
		CategoryID:    b.CategoryID,
		MonthlyAmount: b.MonthlyAmount,
		Spent:         spent,
		Remaining:     b.MonthlyAmount - spent,
		Percentage:    pct,
		Status:        status,
	}
}

// BudgetUsage looks up the unique (user, category) budget and sums the
// user's expenses in that category dated on or after the first of now's
// month. A missing budget yields Found=false with zero values.
func (c *Calculator) BudgetUsage(userID, categoryID uint, now time.Time) (BudgetUsage, error) {
	var b models.Budget
	err := c.db.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BudgetUsage{CategoryID: categoryID, Status: BudgetUnder}, nil
	}
	if err != nil {
		return BudgetUsage{}, apperr.Internal(err)
	}

	spent, err := c.MonthSpend(userID, categoryID, now)
	if err != nil {
		return BudgetUsage{}, err
	}
	return ComputeBudgetUsage(b, spent), nil
}

// MonthSpend sums this-calendar-month expenses for one user/category.
func (c *Calculator) MonthSpend(userID, categoryID uint, now time.Time) (float64, error) {
	var spent float64
	err := c.db.Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ? AND occurred_at >= ?",
			userID, categoryID, startOfMonth(now)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&spent).Error
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return spent, nil
}
