package util

import (
	"net/http"

	"finledger/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a success envelope.
type Response map[string]interface{}

// Pagination describes a page of a list response.
type Pagination struct {
	Total   int64 `json:"total"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

// Success writes the unified success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// Message writes a success envelope that carries only a message.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// Paginated writes a success envelope with pagination metadata.
func Paginated(c *gin.Context, data Response, p Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": p,
	})
}

// Fail maps an application error to its status code and writes the error
// envelope. The mapping lives in apperr; handlers never pick codes.
func Fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"success": false,
		"error":   apperr.PublicMessage(err),
	})
}
