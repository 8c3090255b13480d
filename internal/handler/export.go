package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/models"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the caller's expenses as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// exportExpenses loads the caller's expenses with an optional
// start/end date range.
func (h *ExportHandler) exportExpenses(c *gin.Context, userID uint) ([]models.Expense, error) {
	q := h.DB.Where("user_id = ?", userID)
	if s := c.Query("start"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			return nil, apperr.Validation("invalid start date")
		}
		q = q.Where("occurred_at >= ?", t)
	}
	if s := c.Query("end"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			return nil, apperr.Validation("invalid end date")
		}
		q = q.Where("occurred_at < ?", t.AddDate(0, 0, 1))
	}

	var expenses []models.Expense
	if err := q.Order("occurred_at DESC").Find(&expenses).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return expenses, nil
}

var exportHeaders = []string{"Category", "Amount", "Description", "Notes", "Date"}

func exportRow(e *models.Expense) []string {
	return []string{
		strconv.FormatUint(uint64(e.CategoryID), 10),
		strconv.FormatFloat(e.Amount, 'f', 2, 64),
		e.Description,
		e.Notes,
		e.OccurredAt.Format("2006-01-02"),
	}
}

// ExportCSV streams expenses as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	expenses, err := h.exportExpenses(c, user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range expenses {
		writer.Write(exportRow(&expenses[i]))
	}
}

// ExportXLSX streams expenses as an XLSX attachment.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	expenses, err := h.exportExpenses(c, user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Expenses"
	index, err2 := f.NewSheet(sheetName)
	if err2 != nil {
		util.Fail(c, apperr.Internal(err2))
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range expenses {
		row := idx + 2
		for col, val := range exportRow(&expenses[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Fail(c, apperr.Internal(err))
	}
}
