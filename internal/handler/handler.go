package handler

import (
	"strconv"

	"finledger/internal/apperr"
	"finledger/internal/middleware"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
)

// requireUser extracts the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized("not logged in"))
		return nil, false
	}
	return user, true
}

// pathID parses a positive uint path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		util.Fail(c, apperr.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}

// pageParams parses offset/limit query params, clamping limit to
// [1, 100] with the given default.
func pageParams(c *gin.Context, defaultLimit int) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	return offset, limit
}
