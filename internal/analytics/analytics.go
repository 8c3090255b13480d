// Package analytics aggregates a user's expenses over fixed time windows
// into a spending report. All store reads for one report are issued
// concurrently and joined before composition; the aggregator never writes.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Category trend tags.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Summary compares this month's spend against the total budgeted amount.
type Summary struct {
	ThisMonth   float64 `json:"this_month"`
	TotalBudget float64 `json:"total_budget"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	SavingsRate int     `json:"savings_rate"`
}

// Trends holds raw window totals and month-over-month growth.
type Trends struct {
	ThisMonth  float64 `json:"this_month"`
	LastMonth  float64 `json:"last_month"`
	Last7Days  float64 `json:"last_7_days"`
	Last30Days float64 `json:"last_30_days"`
	GrowthRate float64 `json:"growth_rate"` // percent, one decimal
}

// CategoryBreakdown is one category's this-month activity.
type CategoryBreakdown struct {
	CategoryID uint    `json:"category_id"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Budget     float64 `json:"budget"`
	Percentage int     `json:"percentage"`
	Trend      string  `json:"trend"`
}

// GoalsBlock summarizes goal completion across all of a user's goals.
type GoalsBlock struct {
	Completed   int     `json:"completed"`
	InProgress  int     `json:"in_progress"`
	TotalSaved  float64 `json:"total_saved"`
	TotalTarget float64 `json:"total_target"`
}

// Report is the full analytics response for one user.
type Report struct {
	Summary    Summary             `json:"summary"`
	Trends     Trends              `json:"trends"`
	Categories []CategoryBreakdown `json:"categories"`
	Goals      GoalsBlock          `json:"goals"`
}

// Aggregator issues the window fetches and composes reports.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Report fetches the four expense windows plus budgets and goals
// concurrently and composes the report. Each fetch fills a disjoint slice
// so the goroutines share nothing but the error group.
func (a *Aggregator) Report(ctx context.Context, userID uint, now time.Time) (Report, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var (
		thisMonth []models.Expense
		lastMonth []models.Expense
		last7     []models.Expense
		last30    []models.Expense
		budgets   []models.Budget
		goals     []models.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.fetchExpenses(gctx, userID, monthStart, now, &thisMonth))
	g.Go(a.fetchExpenses(gctx, userID, prevMonthStart, monthStart, &lastMonth))
	g.Go(a.fetchExpenses(gctx, userID, now.AddDate(0, 0, -7), now, &last7))
	g.Go(a.fetchExpenses(gctx, userID, now.AddDate(0, 0, -30), now, &last30))
	g.Go(func() error {
		return a.db.WithContext(gctx).Where("user_id = ?", userID).Find(&budgets).Error
	})
	g.Go(func() error {
		return a.db.WithContext(gctx).Where("user_id = ?", userID).Find(&goals).Error
	})
	if err := g.Wait(); err != nil {
		return Report{}, apperr.Internal(err)
	}

	return BuildReport(thisMonth, lastMonth, last7, last30, budgets, goals), nil
}

func (a *Aggregator) fetchExpenses(ctx context.Context, userID uint, from, to time.Time, out *[]models.Expense) func() error {
	return func() error {
		return a.db.WithContext(ctx).
			Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
			Find(out).Error
	}
}

// BuildReport composes a report from already-fetched rows. Pure.
func BuildReport(thisMonth, lastMonth, last7, last30 []models.Expense, budgets []models.Budget, goals []models.Goal) Report {
	thisTotal := sumAmounts(thisMonth)
	lastTotal := sumAmounts(lastMonth)

	var totalBudget float64
	budgetByCategory := make(map[uint]float64, len(budgets))
	for _, b := range budgets {
		totalBudget += b.MonthlyAmount
		budgetByCategory[b.CategoryID] = b.MonthlyAmount
	}

	summary := Summary{
		ThisMonth:   thisTotal,
		TotalBudget: totalBudget,
		Used:        thisTotal,
		Remaining:   totalBudget - thisTotal,
	}
	if totalBudget > 0 {
		summary.SavingsRate = int(math.Round((totalBudget - thisTotal) / totalBudget * 100))
	}

	trends := Trends{
		ThisMonth:  thisTotal,
		LastMonth:  lastTotal,
		Last7Days:  sumAmounts(last7),
		Last30Days: sumAmounts(last30),
	}
	if lastTotal > 0 {
		trends.GrowthRate = math.Round((thisTotal-lastTotal)/lastTotal*100*10) / 10
	}

	return Report{
		Summary:    summary,
		Trends:     trends,
		Categories: categoryBreakdown(thisMonth, lastMonth, budgetByCategory),
		Goals:      goalsBlock(goals),
	}
}

// categoryBreakdown covers only categories with at least one this-month
// expense, sorted descending by amount.
func categoryBreakdown(thisMonth, lastMonth []models.Expense, budgetByCategory map[uint]float64) []CategoryBreakdown {
	type bucket struct {
		amount float64
		count  int
	}
	cur := make(map[uint]*bucket)
	for _, e := range thisMonth {
		b, ok := cur[e.CategoryID]
		if !ok {
			b = &bucket{}
			cur[e.CategoryID] = b
		}
		b.amount += e.Amount
		b.count++
	}

	prev := make(map[uint]float64)
	for _, e := range lastMonth {
		prev[e.CategoryID] += e.Amount
	}

	out := make([]CategoryBreakdown, 0, len(cur))
	for catID, b := range cur {
		cb := CategoryBreakdown{
			CategoryID: catID,
			Amount:     b.amount,
			Count:      b.count,
			Budget:     budgetByCategory[catID],
			Trend:      categoryTrend(b.amount, prev[catID]),
		}
		if cb.Budget > 0 {
			cb.Percentage = int(math.Round(cb.Amount / cb.Budget * 100))
		}
		out = append(out, cb)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// categoryTrend tags a category up above 1.1x last month, down below
// 0.9x, stable in between.
func categoryTrend(current, previous float64) string {
	switch {
	case current > previous*1.1:
		return TrendUp
	case current < previous*0.9:
		return TrendDown
	default:
		return TrendStable
	}
}

func goalsBlock(goals []models.Goal) GoalsBlock {
	var gb GoalsBlock
	for _, g := range goals {
		if g.CurrentAmount >= g.TargetAmount {
			gb.Completed++
		} else {
			gb.InProgress++
		}
		gb.TotalSaved += g.CurrentAmount
		gb.TotalTarget += g.TargetAmount
	}
	return gb
}

func sumAmounts(expenses []models.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}
