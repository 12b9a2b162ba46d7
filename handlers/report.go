package handlers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/store"
)

const reportSheet = "Daily Visitor Report"

type ReportHandler struct {
	store store.Store
}

func NewReportHandler(st store.Store) *ReportHandler {
	return &ReportHandler{store: st}
}

// Daily renders the visits of one UTC calendar day as an xlsx attachment.
func (h *ReportHandler) Daily(c *gin.Context) {
	day := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	logs, err := h.store.LogsBetween(c.Request.Context(), from, to)
	if err != nil {
		log.Printf("Error loading visit logs for report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}
	if len(logs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No visits found for the specified date"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", reportSheet)

	headers := []string{"Visitor Name", "Phone Number", "Aadhaar Number", "Entry Time", "Exit Time", "Purpose", "Duration (minutes)"}
	widths := []float64{20, 15, 20, 20, 20, 30, 15}
	for i, header := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(reportSheet, col+"1", header)
		f.SetColWidth(reportSheet, col, col, widths[i])
	}

	for i, l := range logs {
		row := i + 2
		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row), l.Visitor.Name)
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", row), l.Visitor.PhoneNumber)
		f.SetCellValue(reportSheet, fmt.Sprintf("C%d", row), l.Visitor.AadhaarNumber)
		f.SetCellValue(reportSheet, fmt.Sprintf("D%d", row), formatTime(l.EntryTime))
		f.SetCellValue(reportSheet, fmt.Sprintf("E%d", row), formatTime(l.ExitTime))
		f.SetCellValue(reportSheet, fmt.Sprintf("F%d", row), l.Purpose)
		f.SetCellValue(reportSheet, fmt.Sprintf("G%d", row), durationMinutes(l.VisitLog))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=visitor-report-%s.xlsx", from.Format("2006-01-02")))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("Error writing report: %v", err)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// durationMinutes returns whole minutes between entry and exit, or "N/A" for
// an open log.
func durationMinutes(l models.VisitLog) interface{} {
	if l.EntryTime == nil || l.ExitTime == nil {
		return "N/A"
	}
	return int(math.Round(l.ExitTime.Sub(*l.EntryTime).Minutes()))
}
