package handler

import (
	"strings"

	"finledger/internal/apperr"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetMe returns the current user, including subscription state.
func GetMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":                  user.ID,
			"username":            user.Username,
			"display_name":        user.DisplayName,
			"subscription_status": user.SubscriptionStatus,
			"subscription_plan":   user.SubscriptionPlan,
			"trial_ends_at":       user.TrialEndsAt,
			"created_at":          user.CreatedAt,
		},
	})
}

type updateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile updates the current user's display name.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireUser(c)
		if !ok {
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, apperr.Validation("invalid request body"))
			return
		}

		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if err := db.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
			util.Fail(c, apperr.Internal(err))
			return
		}
		user.DisplayName = req.DisplayName

		util.Success(c, util.Response{
			"user": gin.H{
				"id":           user.ID,
				"username":     user.Username,
				"display_name": user.DisplayName,
			},
		})
	}
}

// ChangePassword verifies the old password and stores a new hash.
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireUser(c)
		if !ok {
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, apperr.Validation("invalid request body"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Fail(c, apperr.Validation("old password is incorrect"))
			return
		}
		if !isStrongPassword(req.NewPassword) {
			util.Fail(c, apperr.Validation("password must be 8-32 characters with upper, lower and digit"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			util.Fail(c, apperr.Internal(err))
			return
		}
		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Fail(c, apperr.Internal(err))
			return
		}

		// revoke every other live session for this user
		_ = db.Model(&models.Session{}).
			Where("user_id = ? AND id <> ?", user.ID, c.GetString("sessionID")).
			Update("revoked", true).Error

		util.Message(c, "password changed")
	}
}
