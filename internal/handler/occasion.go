package handler

import (
	"errors"
	"strings"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/authz"
	"finledger/internal/models"
	"finledger/internal/progress"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OccasionHandler serves occasion CRUD, progress and spend updates.
type OccasionHandler struct {
	DB    *gorm.DB
	Authz *authz.Resolver
	Calc  *progress.Calculator
}

func NewOccasionHandler(db *gorm.DB, az *authz.Resolver, calc *progress.Calculator) *OccasionHandler {
	return &OccasionHandler{DB: db, Authz: az, Calc: calc}
}

type occasionReq struct {
	Name   string  `json:"name" binding:"required,max=128"`
	Date   string  `json:"date" binding:"required"`
	Budget float64 `json:"budget"`
}

type occasionResp struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Budget    float64   `json:"budget"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"created_at"`
}

func toOccasionResp(o *models.Occasion) occasionResp {
	return occasionResp{
		ID:        o.ID,
		Name:      o.Name,
		Date:      o.Date,
		Budget:    o.Budget,
		Spent:     o.Spent,
		CreatedAt: o.CreatedAt,
	}
}

// parseOccasionDate parses and truncates to midnight, so a same-day
// occasion derives daysUntil == 0 at any time of day.
func parseOccasionDate(s string) (time.Time, error) {
	t, err := util.ParseDate(s)
	if err != nil {
		return time.Time{}, apperr.Validation(err.Error())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

func (h *OccasionHandler) CreateOccasion(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req occasionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	date, err := parseOccasionDate(req.Date)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if req.Budget < 0 {
		util.Fail(c, apperr.Validation("budget cannot be negative"))
		return
	}

	occasion := models.Occasion{
		UserID: user.ID,
		Name:   strings.TrimSpace(req.Name),
		Date:   date,
		Budget: req.Budget,
	}
	if err := h.DB.Create(&occasion).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"occasion": toOccasionResp(&occasion)})
}

func (h *OccasionHandler) ListOccasions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var occasions []models.Occasion
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date ASC").
		Find(&occasions).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	now := time.Now()
	type item struct {
		occasionResp
		Progress progress.OccasionProgress `json:"progress"`
	}
	items := make([]item, 0, len(occasions))
	for i := range occasions {
		items = append(items, item{
			occasionResp: toOccasionResp(&occasions[i]),
			Progress:     progress.ComputeOccasionProgress(occasions[i], now),
		})
	}

	util.Success(c, util.Response{"items": items})
}

func (h *OccasionHandler) GetOccasionProgress(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	prog, err := h.Calc.OccasionProgress(user.ID, id, time.Now())
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{"progress": prog})
}

func (h *OccasionHandler) UpdateOccasion(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req occasionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	date, err := parseOccasionDate(req.Date)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if req.Budget < 0 {
		util.Fail(c, apperr.Validation("budget cannot be negative"))
		return
	}

	occasion, err := h.ownedOccasion(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	occasion.Name = strings.TrimSpace(req.Name)
	occasion.Date = date
	occasion.Budget = req.Budget
	if err := h.DB.Save(occasion).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"occasion": toOccasionResp(occasion)})
}

type spendReq struct {
	Amount float64 `json:"amount" binding:"required"`
}

// AddSpend adds to the occasion's caller-maintained running total.
func (h *OccasionHandler) AddSpend(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req spendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}

	occasion, err := h.ownedOccasion(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	occasion.Spent += req.Amount
	if err := h.DB.Save(occasion).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{
		"occasion": toOccasionResp(occasion),
		"progress": progress.ComputeOccasionProgress(*occasion, time.Now()),
	})
}

func (h *OccasionHandler) DeleteOccasion(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	occasion, err := h.ownedOccasion(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	if err := h.DB.Delete(occasion).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "occasion deleted")
}

func (h *OccasionHandler) ownedOccasion(userID, id uint) (*models.Occasion, error) {
	var occasion models.Occasion
	err := h.DB.First(&occasion, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("occasion not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	decision, err := h.Authz.Authorize(userID, authz.Resource{
		Kind:    authz.ResourceOccasion,
		OwnerID: occasion.UserID,
	}, authz.PermOccasionUpdate)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.NotFound("occasion not found")
	}
	return &occasion, nil
}
