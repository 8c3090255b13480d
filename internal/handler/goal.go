package handler

import (
	"errors"
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

// GoalHandler serves savings-goal CRUD, progress and contributions.
type GoalHandler struct {
	DB       *gorm.DB
	Authz    *authz.Resolver
	Calc     *progress.Calculator
	Notifier *notify.Emitter
}

func NewGoalHandler(db *gorm.DB, az *authz.Resolver, calc *progress.Calculator, notifier *notify.Emitter) *GoalHandler {
	return &GoalHandler{DB: db, Authz: az, Calc: calc, Notifier: notifier}
}

type goalReq struct {
	Name         string  `json:"name" binding:"required,max=128"`
	TargetAmount float64 `json:"target_amount" binding:"required"`
	Deadline     string  `json:"deadline"`
}

type goalResp struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toGoalResp(g *models.Goal) goalResp {
	return goalResp{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
	}
}

func parseDeadline(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	return &t, nil
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.TargetAmount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		util.Fail(c, err)
		return
	}

	goal := models.Goal{
		UserID:       user.ID,
		Name:         strings.TrimSpace(req.Name),
		TargetAmount: req.TargetAmount,
		Deadline:     deadline,
	}
	if err := h.DB.Create(&goal).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"goal": toGoalResp(&goal)})
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var goals []models.Goal
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	now := time.Now()
	type item struct {
		goalResp
		Progress progress.GoalProgress `json:"progress"`
	}
	items := make([]item, 0, len(goals))
	for i := range goals {
		items = append(items, item{
			goalResp: toGoalResp(&goals[i]),
			Progress: progress.ComputeGoalProgress(goals[i], now),
		})
	}

	util.Success(c, util.Response{"items": items})
}

// GetGoalProgress derives progress for one goal. Missing and other-owner
// goals both come back as a zero result with found=false.
func (h *GoalHandler) GetGoalProgress(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	prog, err := h.Calc.GoalProgress(user.ID, id, time.Now())
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{"progress": prog})
}

func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.TargetAmount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		util.Fail(c, err)
		return
	}

	goal, err := h.ownedGoal(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	goal.Name = strings.TrimSpace(req.Name)
	goal.TargetAmount = req.TargetAmount
	goal.Deadline = deadline
	if err := h.DB.Save(goal).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"goal": toGoalResp(goal)})
}

type contributeReq struct {
	Amount float64 `json:"amount" binding:"required"`
}

// Contribute adds to the goal's saved amount and fires a completion
// notification when the contribution crosses the target.
func (h *GoalHandler) Contribute(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req contributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}

	goal, err := h.ownedGoal(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	wasCompleted := goal.CurrentAmount >= goal.TargetAmount
	goal.CurrentAmount += req.Amount
	if err := h.DB.Save(goal).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	if !wasCompleted && goal.CurrentAmount >= goal.TargetAmount {
		h.Notifier.GoalCompleted(user.ID, goal)
	}

	util.Success(c, util.Response{
		"goal":     toGoalResp(goal),
		"progress": progress.ComputeGoalProgress(*goal, time.Now()),
	})
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	goal, err := h.ownedGoal(user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	if err := h.DB.Delete(goal).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "goal deleted")
}

func (h *GoalHandler) ownedGoal(userID, id uint) (*models.Goal, error) {
	var goal models.Goal
	err := h.DB.First(&goal, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("goal not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	decision, err := h.Authz.Authorize(userID, authz.Resource{
		Kind:    authz.ResourceGoal,
		OwnerID: goal.UserID,
	}, authz.PermGoalUpdate)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.NotFound("goal not found")
	}
	return &goal, nil
}
