package handler

import (
	"errors"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/authz"
	"finledger/internal/models"
	"finledger/internal/progress"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler serves budget CRUD and usage queries. Duplicate budgets
// for a category are rejected with 409 on every path.
type BudgetHandler struct {
	DB    *gorm.DB
	Authz *authz.Resolver
	Calc  *progress.Calculator
}

func NewBudgetHandler(db *gorm.DB, az *authz.Resolver, calc *progress.Calculator) *BudgetHandler {
	return &BudgetHandler{DB: db, Authz: az, Calc: calc}
}

type budgetReq struct {
	CategoryID    uint    `json:"category_id" binding:"required"`
	MonthlyAmount float64 `json:"monthly_amount" binding:"required"`
}

type budgetResp struct {
	ID            uint                 `json:"id"`
	CategoryID    uint                 `json:"category_id"`
	MonthlyAmount float64              `json:"monthly_amount"`
	Usage         progress.BudgetUsage `json:"usage"`
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req budgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.MonthlyAmount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}

	var count int64
	if err := h.DB.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ?", user.ID, req.CategoryID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}
	if count > 0 {
		util.Fail(c, apperr.Conflict("a budget for this category already exists"))
		return
	}

	budget := models.Budget{
		UserID:        user.ID,
		CategoryID:    req.CategoryID,
		MonthlyAmount: req.MonthlyAmount,
	}
	if err := h.DB.Create(&budget).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{
		"budget": gin.H{
			"id":             budget.ID,
			"category_id":    budget.CategoryID,
			"monthly_amount": budget.MonthlyAmount,
		},
	})
}

// ListBudgets returns every budget with its current-month usage.
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var budgets []models.Budget
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("category_id ASC").
		Find(&budgets).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	now := time.Now()
	items := make([]budgetResp, 0, len(budgets))
	for _, b := range budgets {
		spent, err := h.Calc.MonthSpend(user.ID, b.CategoryID, now)
		if err != nil {
			util.Fail(c, err)
			return
		}
		items = append(items, budgetResp{
			ID:            b.ID,
			CategoryID:    b.CategoryID,
			MonthlyAmount: b.MonthlyAmount,
			Usage:         progress.ComputeBudgetUsage(b, spent),
		})
	}

	util.Success(c, util.Response{"items": items})
}

// GetBudgetUsage derives this-month usage for one category. A missing
// budget comes back as a zero-usage result, not an error.
func (h *BudgetHandler) GetBudgetUsage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "category")
	if !ok {
		return
	}

	usage, err := h.Calc.BudgetUsage(user.ID, categoryID, time.Now())
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{"usage": usage})
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		MonthlyAmount float64 `json:"monthly_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.MonthlyAmount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}

	budget, err := h.ownedBudget(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	budget.MonthlyAmount = req.MonthlyAmount
	if err := h.DB.Save(budget).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{
		"budget": gin.H{
			"id":             budget.ID,
			"category_id":    budget.CategoryID,
			"monthly_amount": budget.MonthlyAmount,
		},
	})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	budget, err := h.ownedBudget(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	if err := h.DB.Delete(budget).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "budget deleted")
}

func (h *BudgetHandler) ownedBudget(userID, id uint) (*models.Budget, error) {
	var budget models.Budget
	err := h.DB.First(&budget, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("budget not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	decision, err := h.Authz.Authorize(userID, authz.Resource{
		Kind:    authz.ResourceBudget,
		OwnerID: budget.UserID,
	}, authz.PermBudgetUpdate)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.NotFound("budget not found")
	}
	return &budget, nil
}
