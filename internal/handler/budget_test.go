package handler

import (
	"net/http"
	"testing"
	"time"

	"finledger/internal/authz"
	"finledger/internal/models"
	"finledger/internal/progress"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func budgetRouter(db *gorm.DB, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBudgetHandler(db, authz.NewResolver(db), progress.NewCalculator(db))

	r := gin.New()
	r.Use(asUser(user))
	r.POST("/budgets", h.CreateBudget)
	r.GET("/budgets", h.ListBudgets)
	r.GET("/budgets/category/:category/usage", h.GetBudgetUsage)
	r.PUT("/budgets/:id", h.UpdateBudget)
	r.DELETE("/budgets/:id", h.DeleteBudget)
	return r
}

func TestCreateBudget_DuplicateConflict(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	r := budgetRouter(db, user)

	body := map[string]any{"category_id": 3, "monthly_amount": 1000.0}

	w := doJSON(t, r, http.MethodPost, "/budgets", body)
	require.Equal(t, http.StatusOK, w.Code)

	// same category again, even with a different amount
	body["monthly_amount"] = 500.0
	w = doJSON(t, r, http.MethodPost, "/budgets", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])

	var count int64
	require.NoError(t, db.Model(&models.Budget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateBudget_RejectsNonPositiveAmount(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	r := budgetRouter(db, user)

	w := doJSON(t, r, http.MethodPost, "/budgets", map[string]any{
		"category_id": 1, "monthly_amount": -10.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBudgetUsage(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	require.NoError(t, db.Create(&models.Budget{UserID: user.ID, CategoryID: 2, MonthlyAmount: 1000}).Error)
	require.NoError(t, db.Create(&models.Expense{
		UserID: user.ID, CategoryID: 2, Amount: 850, OccurredAt: time.Now(),
	}).Error)

	r := budgetRouter(db, user)
	w := doJSON(t, r, http.MethodGet, "/budgets/category/2/usage", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	usage := resp["data"].(map[string]any)["usage"].(map[string]any)
	assert.Equal(t, float64(85), usage["percentage"])
	assert.Equal(t, "near", usage["status"])
	assert.Equal(t, float64(150), usage["remaining"])
}

func TestGetBudgetUsage_MissingBudgetIsZero(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")

	r := budgetRouter(db, user)
	w := doJSON(t, r, http.MethodGet, "/budgets/category/9/usage", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	usage := resp["data"].(map[string]any)["usage"].(map[string]any)
	assert.Equal(t, false, usage["found"])
	assert.Equal(t, float64(0), usage["percentage"])
}

func TestUpdateBudget_OtherOwnerLooksLikeMissing(t *testing.T) {
	db := openTestDB(t)
	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")

	budget := models.Budget{UserID: owner.ID, CategoryID: 1, MonthlyAmount: 300}
	require.NoError(t, db.Create(&budget).Error)

	r := budgetRouter(db, other)
	w := doJSON(t, r, http.MethodPut, "/budgets/1", map[string]any{"monthly_amount": 999.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
