package handler

import (
	"errors"
	"strings"

	"finledger/internal/apperr"
	"finledger/internal/authz"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupHandler serves shared groups and their memberships. Member
// management is gated by the group:manage_members permission; deleting
// the group itself is creator-only.
type GroupHandler struct {
	DB    *gorm.DB
	Authz *authz.Resolver
}

func NewGroupHandler(db *gorm.DB, az *authz.Resolver) *GroupHandler {
	return &GroupHandler{DB: db, Authz: az}
}

type groupReq struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=255"`
}

func groupResp(g *models.Group) gin.H {
	return gin.H{
		"id":            g.ID,
		"name":          g.Name,
		"description":   g.Description,
		"created_by_id": g.CreatedByID,
		"created_at":    g.CreatedAt,
	}
}

// CreateGroup creates the group and enrolls the creator as owner in the
// same transaction.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	group := models.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedByID: user.ID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID: group.ID,
			UserID:  user.ID,
			Role:    models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"group": groupResp(&group)})
}

// ListGroups returns the groups the caller belongs to, with their role.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var memberships []models.GroupMember
	if err := h.DB.Preload("Group").
		Where("user_id = ?", user.ID).
		Find(&memberships).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	items := make([]gin.H, 0, len(memberships))
	for i := range memberships {
		item := groupResp(&memberships[i].Group)
		item["role"] = memberships[i].Role
		items = append(items, item)
	}

	util.Success(c, util.Response{"items": items})
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	group, _, err := h.memberGroup(user.ID, id, authz.PermGroupRead)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{"group": groupResp(group)})
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}

	group, _, err := h.memberGroup(user.ID, id, authz.PermGroupUpdate)
	if err != nil {
		util.Fail(c, err)
		return
	}

	group.Name = strings.TrimSpace(req.Name)
	group.Description = strings.TrimSpace(req.Description)
	if err := h.DB.Save(group).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"group": groupResp(group)})
}

// DeleteGroup is creator-only: ownership keys off created_by_id, not the
// member role table.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	group, err := h.loadGroup(id)
	if err != nil {
		util.Fail(c, err)
		return
	}

	decision := authz.OwnerDecision(user.ID, authz.Resource{
		Kind:    authz.ResourceGroup,
		OwnerID: group.CreatedByID,
	})
	if !decision.Allowed {
		util.Fail(c, apperr.Forbidden("only the group creator can delete it"))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "group deleted")
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, _, err := h.memberGroup(user.ID, id, authz.PermGroupRead); err != nil {
		util.Fail(c, err)
		return
	}

	var members []models.GroupMember
	if err := h.DB.Preload("User").
		Where("group_id = ?", id).
		Find(&members).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	items := make([]gin.H, 0, len(members))
	for i := range members {
		m := &members[i]
		items = append(items, gin.H{
			"user_id":      m.UserID,
			"username":     m.User.Username,
			"display_name": m.User.DisplayName,
			"role":         m.Role,
			"joined_at":    m.CreatedAt,
		})
	}

	util.Success(c, util.Response{"items": items})
}

type addMemberReq struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateRole(req.Role); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}
	if req.Role == models.RoleOwner {
		util.Fail(c, apperr.Validation("owner role belongs to the group creator"))
		return
	}

	group, _, err := h.memberGroup(user.ID, id, authz.PermGroupManageMembers)
	if err != nil {
		util.Fail(c, err)
		return
	}

	var target models.User
	err = h.DB.Where("LOWER(username) = LOWER(?)", strings.TrimSpace(req.Username)).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Fail(c, apperr.NotFound("user not found"))
		return
	}
	if err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	var count int64
	if err := h.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", group.ID, target.ID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}
	if count > 0 {
		util.Fail(c, apperr.Conflict("user is already a member"))
		return
	}

	member := models.GroupMember{
		GroupID: group.ID,
		UserID:  target.ID,
		Role:    req.Role,
	}
	if err := h.DB.Create(&member).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{
		"member": gin.H{
			"user_id":  target.ID,
			"username": target.Username,
			"role":     member.Role,
		},
	})
}

type changeRoleReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *GroupHandler) UpdateMemberRole(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req changeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateRole(req.Role); err != nil {
		util.Fail(c, apperr.Validation(err.Error()))
		return
	}
	if req.Role == models.RoleOwner {
		util.Fail(c, apperr.Validation("owner role belongs to the group creator"))
		return
	}

	group, _, err := h.memberGroup(user.ID, id, authz.PermGroupManageMembers)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if memberID == group.CreatedByID {
		util.Fail(c, apperr.Forbidden("the group creator's role cannot be changed"))
		return
	}

	res := h.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", group.ID, memberID).
		Update("role", req.Role)
	if res.Error != nil {
		util.Fail(c, apperr.Internal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.Fail(c, apperr.NotFound("member not found"))
		return
	}

	util.Message(c, "role updated")
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	group, _, err := h.memberGroup(user.ID, id, authz.PermGroupManageMembers)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if memberID == group.CreatedByID {
		util.Fail(c, apperr.Forbidden("the group creator cannot be removed"))
		return
	}

	res := h.DB.Where("group_id = ? AND user_id = ?", group.ID, memberID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		util.Fail(c, apperr.Internal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.Fail(c, apperr.NotFound("member not found"))
		return
	}

	util.Message(c, "member removed")
}

func (h *GroupHandler) loadGroup(id uint) (*models.Group, error) {
	var group models.Group
	err := h.DB.First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("group not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &group, nil
}

// memberGroup loads a group and authorizes the caller's role for perm.
// Non-members get 404 so group existence does not leak; members whose
// role lacks the permission get 403.
func (h *GroupHandler) memberGroup(userID, groupID uint, perm authz.Permission) (*models.Group, authz.Decision, error) {
	group, err := h.loadGroup(groupID)
	if err != nil {
		return nil, authz.Decision{}, err
	}

	if _, err := h.Authz.Membership(userID, groupID); err != nil {
		return nil, authz.Decision{}, err
	}

	decision, err := h.Authz.Authorize(userID, authz.Resource{
		Kind:    authz.ResourceGroup,
		OwnerID: group.CreatedByID,
		GroupID: group.ID,
	}, perm)
	if err != nil {
		return nil, authz.Decision{}, err
	}
	if !decision.Allowed {
		return nil, decision, apperr.Forbidden(decision.Reason)
	}
	return group, decision, nil
}
