package handler

import (
	"net/http"
	"strconv"
	"time"

	"crewsheet/internal/logger"
	"crewsheet/internal/model"
	"crewsheet/internal/service"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"github.com/gin-gonic/gin"
)

type SheetHandler struct {
	sheets *service.TimesheetService
	weeks  *week.Holder
}

func NewSheetHandler(sheets *service.TimesheetService, weeks *week.Holder) *SheetHandler {
	return &SheetHandler{sheets: sheets, weeks: weeks}
}

// GET /api/teams/:team/weeks/:week/sheets
func (h *SheetHandler) ListWeek(c *gin.Context) {
	if _, ok := h.weeks.Calendar().ByID(c.Param("week")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not found"})
		return
	}
	entries, err := h.sheets.LoadWeek(c.Request.Context(), c.Param("team"), c.Param("week"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []*sheet.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/teams/:team/weeks/:week/sheets/:member returns the stored entry, or a
// fresh template when none exists yet
func (h *SheetHandler) Get(c *gin.Context) {
	cal := h.weeks.Calendar()
	entry, found, err := h.sheets.Load(c.Request.Context(), c.Param("team"), c.Param("week"), c.Param("member"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if found {
		c.JSON(http.StatusOK, entry)
		return
	}
	template, ok := sheet.NewTemplate(cal, c.Param("week"), c.Param("member"), time.Now())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not found"})
		return
	}
	c.JSON(http.StatusOK, template)
}

// PUT /api/teams/:team/weeks/:week/sheets/:member validates, recomputes
// and upserts. Validation failures come back as data with 422, listing every
// problem in one pass.
func (h *SheetHandler) Put(c *gin.Context) {
	var req model.SaveSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cal := h.weeks.Calendar()
	entry, ok := sheet.NewTemplate(cal, c.Param("week"), c.Param("member"), time.Now())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not found"})
		return
	}
	entry.WorkTypes = req.WorkTypes
	entry.WorkingDays = req.WorkingDays
	entry.LeaveDays = req.LeaveDays
	entry.WeeklyRating = req.WeeklyRating

	if result := sheet.Validate(cal, entry); !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	if err := h.sheets.Save(c.Request.Context(), c.Param("team"), entry); err != nil {
		logger.Error("save sheet failed", "team", c.Param("team"), "week", entry.WeekID, "member", entry.MemberID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Info("sheet saved", "team", c.Param("team"), "week", entry.WeekID, "member", entry.MemberID, "total", entry.Totals.Week)
	c.JSON(http.StatusOK, entry)
}

// DELETE /api/teams/:team/weeks/:week/sheets/:member
func (h *SheetHandler) Delete(c *gin.Context) {
	if err := h.sheets.Delete(c.Request.Context(), c.Param("team"), c.Param("week"), c.Param("member")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/teams/:team/dashboard?year=&month= builds the monthly rollup; defaults
// to the current week's month when no query is given.
func (h *SheetHandler) Dashboard(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	if year == 0 || month == 0 {
		current, ok := h.weeks.Calendar().Current()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year and month required"})
			return
		}
		year, month = current.Year, current.Month
	}
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}

	summary, err := h.sheets.MonthlyTotals(c.Request.Context(), c.Param("team"), year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
