package middleware

import (
	"errors"
	"strings"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware validates the JWT, checks that its session is still
// live, and puts the current user into the gin context.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query param ?token=xxx (downloads cannot set headers)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) cookie fl_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("fl_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Fail(c, apperr.Unauthorized("not logged in"))
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Fail(c, apperr.Unauthorized("session expired, please log in again"))
			c.Abort()
			return
		}

		// token must map to an unrevoked, unexpired session row
		var session models.Session
		err = db.Where("id = ? AND revoked = ?", claims.SessionID, false).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && session.ExpiresAt.Before(time.Now())) {
			util.Fail(c, apperr.Unauthorized("session expired, please log in again"))
			c.Abort()
			return
		}
		if err != nil {
			util.Fail(c, apperr.Internal(err))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Fail(c, apperr.Unauthorized("user no longer exists"))
			} else {
				util.Fail(c, apperr.Internal(err))
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Set("sessionID", session.ID)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
