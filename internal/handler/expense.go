package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/authz"
	"finledger/internal/models"
	"finledger/internal/notify"
	"finledger/internal/progress"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler serves expense CRUD. Creates and updates re-evaluate the
// category budget and emit threshold notifications.
type ExpenseHandler struct {
	DB       *gorm.DB
	Authz    *authz.Resolver
	Calc     *progress.Calculator
	Notifier *notify.Emitter
	PageSize int
}

func NewExpenseHandler(db *gorm.DB, az *authz.Resolver, calc *progress.Calculator, notifier *notify.Emitter, pageSize int) *ExpenseHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ExpenseHandler{DB: db, Authz: az, Calc: calc, Notifier: notifier, PageSize: pageSize}
}

type expenseReq struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"max=255"`
	Receipt     string  `json:"receipt" binding:"max=255"`
	Notes       string  `json:"notes"`
	OccurredAt  string  `json:"occurred_at"`
}

type expenseResp struct {
	ID          uint      `json:"id"`
	CategoryID  uint      `json:"category_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Receipt     string    `json:"receipt,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResp(e *models.Expense) expenseResp {
	return expenseResp{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Description: e.Description,
		Receipt:     e.Receipt,
		Notes:       e.Notes,
		OccurredAt:  e.OccurredAt,
		CreatedAt:   e.CreatedAt,
	}
}

// parseExpenseReq validates the payload and resolves the occurrence
// date, defaulting to now and rejecting future dates.
func parseExpenseReq(req *expenseReq) (time.Time, error) {
	if err := util.ValidateAmount(req.Amount); err != nil {
		return time.Time{}, apperr.Validation(err.Error())
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		t, err := util.ParseDate(req.OccurredAt)
		if err != nil {
			return time.Time{}, apperr.Validation(err.Error())
		}
		occurredAt = t
	}
	if occurredAt.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		return time.Time{}, apperr.Validation("occurrence date cannot be in the future")
	}
	return occurredAt, nil
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	occurredAt, err := parseExpenseReq(&req)
	if err != nil {
		util.Fail(c, err)
		return
	}

	expense := models.Expense{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Receipt:     req.Receipt,
		Notes:       req.Notes,
		OccurredAt:  occurredAt,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	h.Notifier.ExpenseAdded(user.ID, &expense)
	h.checkBudgetThreshold(user.ID, expense.CategoryID)

	util.Success(c, util.Response{
		"expense": toExpenseResp(&expense),
	})
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	expense, err := h.ownedExpense(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"expense": toExpenseResp(expense),
	})
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	occurredAt, err := parseExpenseReq(&req)
	if err != nil {
		util.Fail(c, err)
		return
	}

	expense, err := h.ownedExpense(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	oldCategory := expense.CategoryID
	expense.CategoryID = req.CategoryID
	expense.Amount = req.Amount
	expense.Description = strings.TrimSpace(req.Description)
	expense.Receipt = req.Receipt
	expense.Notes = req.Notes
	expense.OccurredAt = occurredAt

	if err := h.DB.Save(expense).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	h.checkBudgetThreshold(user.ID, expense.CategoryID)
	if oldCategory != expense.CategoryID {
		h.checkBudgetThreshold(user.ID, oldCategory)
	}

	util.Success(c, util.Response{
		"expense": toExpenseResp(expense),
	})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	expense, err := h.ownedExpense(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	if err := h.DB.Delete(expense).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "expense deleted")
}

// ListExpenses supports date-range and category filters, sorting and
// offset/limit pagination.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	offset, limit := pageParams(c, h.PageSize)

	q := h.DB.Model(&models.Expense{}).Where("user_id = ?", user.ID)

	if s := c.Query("start"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			util.Fail(c, apperr.Validation("invalid start date"))
			return
		}
		q = q.Where("occurred_at >= ?", t)
	}
	if s := c.Query("end"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			util.Fail(c, apperr.Validation("invalid end date"))
			return
		}
		// end date is inclusive: filter below the next day
		q = q.Where("occurred_at < ?", t.AddDate(0, 0, 1))
	}
	if s := c.Query("category_id"); s != "" {
		catID, err := strconv.Atoi(s)
		if err != nil || catID <= 0 {
			util.Fail(c, apperr.Validation("invalid category_id"))
			return
		}
		q = q.Where("category_id = ?", catID)
	}

	orderBy := "occurred_at DESC, id DESC"
	switch c.DefaultQuery("sort", "date_desc") {
	case "date_asc":
		orderBy = "occurred_at ASC, id ASC"
	case "amount_desc":
		orderBy = "amount DESC, id DESC"
	case "amount_asc":
		orderBy = "amount ASC, id ASC"
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	var expenses []models.Expense
	if err := q.Session(&gorm.Session{}).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	items := make([]expenseResp, 0, len(expenses))
	for i := range expenses {
		items = append(items, toExpenseResp(&expenses[i]))
	}

	util.Paginated(c, util.Response{"items": items}, util.Pagination{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+limit) < total,
	})
}

// ownedExpense loads an expense and authorizes the caller as its owner.
// Missing rows and other-owner rows both come back as NotFound.
func (h *ExpenseHandler) ownedExpense(userID, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := h.DB.First(&expense, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("expense not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	decision, err := h.Authz.Authorize(userID, authz.Resource{
		Kind:    authz.ResourceExpense,
		OwnerID: expense.UserID,
	}, authz.PermExpenseUpdate)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.NotFound("expense not found")
	}
	return &expense, nil
}

// checkBudgetThreshold re-derives the category budget and notifies when
// usage sits at or past 80%. Not deduplicated across updates.
func (h *ExpenseHandler) checkBudgetThreshold(userID, categoryID uint) {
	usage, err := h.Calc.BudgetUsage(userID, categoryID, time.Now())
	if err != nil || !usage.Found {
		return
	}
	if usage.Percentage >= 80 {
		h.Notifier.BudgetThreshold(userID, usage)
	}
}
