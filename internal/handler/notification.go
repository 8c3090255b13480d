package handler

import (
	"finledger/internal/apperr"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves the user's notification feed.
type NotificationHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewNotificationHandler(db *gorm.DB, pageSize int) *NotificationHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NotificationHandler{DB: db, PageSize: pageSize}
}

// ListNotifications returns notifications newest first; ?unread=true
// restricts to unread ones.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	offset, limit := pageParams(c, h.PageSize)

	q := h.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		q = q.Where("read = ?", false)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	var notifications []models.Notification
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Paginated(c, util.Response{"items": notifications}, util.Pagination{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+limit) < total,
	})
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var count int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Success(c, util.Response{"count": count})
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("read", true)
	if res.Error != nil {
		util.Fail(c, apperr.Internal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.Fail(c, apperr.NotFound("notification not found"))
		return
	}

	util.Message(c, "marked read")
}

// MarkAllRead marks every unread notification as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error; err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	util.Message(c, "all marked read")
}
