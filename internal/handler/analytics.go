package handler

import (
	"time"

	"finledger/internal/analytics"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the spending report.
type AnalyticsHandler struct {
	Aggregator *analytics.Aggregator
}

func NewAnalyticsHandler(agg *analytics.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{Aggregator: agg}
}

// GetReport composes the full analytics report for the caller.
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.Aggregator.Report(c.Request.Context(), user.ID, time.Now())
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{"report": report})
}
