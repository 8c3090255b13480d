package handler

import (
	"fmt"
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

func occasionRouter(db *gorm.DB, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOccasionHandler(db, authz.NewResolver(db), progress.NewCalculator(db))

	r := gin.New()
	r.Use(asUser(user))
	r.POST("/occasions", h.CreateOccasion)
	r.GET("/occasions", h.ListOccasions)
	r.GET("/occasions/:id/progress", h.GetOccasionProgress)
	r.POST("/occasions/:id/spend", h.AddSpend)
	r.PUT("/occasions/:id", h.UpdateOccasion)
	r.DELETE("/occasions/:id", h.DeleteOccasion)
	return r
}

func TestCreateOccasion_SameDayDerivesToday(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	r := occasionRouter(db, user)

	w := doJSON(t, r, http.MethodPost, "/occasions", map[string]any{
		"name": "birthday", "date": time.Now().Format("2006-01-02"), "budget": 200.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var occasion models.Occasion
	require.NoError(t, db.First(&occasion, "name = ?", "birthday").Error)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/occasions/%d/progress", occasion.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	prog := decodeBody(t, w)["data"].(map[string]any)["progress"].(map[string]any)
	assert.Equal(t, float64(0), prog["days_until"])
	assert.Equal(t, "today", prog["status"])
}

func TestCreateOccasion_RejectsNegativeBudget(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	r := occasionRouter(db, user)

	w := doJSON(t, r, http.MethodPost, "/occasions", map[string]any{
		"name": "party", "date": "2026-12-24", "budget": -1.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddSpend(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	occasion := models.Occasion{
		UserID: user.ID, Name: "party",
		Date:   time.Now().AddDate(0, 1, 0),
		Budget: 400, Spent: 100,
	}
	require.NoError(t, db.Create(&occasion).Error)

	r := occasionRouter(db, user)
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/occasions/%d/spend", occasion.ID),
		map[string]any{"amount": 100.0})
	require.Equal(t, http.StatusOK, w.Code)

	prog := decodeBody(t, w)["data"].(map[string]any)["progress"].(map[string]any)
	assert.Equal(t, float64(50), prog["percentage"])
	assert.Equal(t, float64(200), prog["remaining"])

	var got models.Occasion
	require.NoError(t, db.First(&got, occasion.ID).Error)
	assert.Equal(t, float64(200), got.Spent)
}

func TestAddSpend_OtherOwnerLooksLikeMissing(t *testing.T) {
	db := openTestDB(t)
	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	occasion := models.Occasion{UserID: owner.ID, Name: "party", Date: time.Now(), Budget: 100}
	require.NoError(t, db.Create(&occasion).Error)

	w := doJSON(t, occasionRouter(db, other), http.MethodPost,
		fmt.Sprintf("/occasions/%d/spend", occasion.ID), map[string]any{"amount": 10.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
