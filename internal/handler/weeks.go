package handler

import (
	"net/http"
	"strconv"
	"time"

	"crewsheet/internal/logger"
	"crewsheet/internal/week"

	"github.com/gin-gonic/gin"
)

// WeekHandler serves calendar lookups. Everything here is a pure read
// over the shared generated sequence except Regenerate.
type WeekHandler struct {
	weeks         *week.Holder
	epoch         time.Time
	horizonMonths int
}

func NewWeekHandler(weeks *week.Holder, epoch time.Time, horizonMonths int) *WeekHandler {
	return &WeekHandler{weeks: weeks, epoch: epoch, horizonMonths: horizonMonths}
}

// GET /api/weeks returns the selector projection of the full sequence
func (h *WeekHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.weeks.Calendar().SelectorOptions())
}

// GET /api/weeks/current
func (h *WeekHandler) Current(c *gin.Context) {
	w, ok := h.weeks.Calendar().Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no current week"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// GET /api/weeks/:id looks up a week by its Monday key
func (h *WeekHandler) Get(c *gin.Context) {
	cal := h.weeks.Calendar()
	w, ok := cal.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not found"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// GET /api/weeks/for-date?date=YYYY-MM-DD; Sat/Sun dates are not found
func (h *WeekHandler) ForDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	w, ok := h.weeks.Calendar().ForDate(date)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no work week contains that date"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// GET /api/months lists distinct month labels plus weeks for ?year=&month=
func (h *WeekHandler) Months(c *gin.Context) {
	cal := h.weeks.Calendar()
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	resp := gin.H{"labels": cal.MonthLabels()}
	if year != 0 && month != 0 {
		resp["weeks"] = cal.ByMonth(year, month)
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/weeks/regenerate rebuilds the sequence against the current
// clock. The swap is atomic; concurrent readers keep a coherent view.
func (h *WeekHandler) Regenerate(c *gin.Context) {
	if err := h.weeks.Regenerate(h.epoch, time.Now(), h.horizonMonths); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cal := h.weeks.Calendar()
	logger.Info("calendar regenerated", "weeks", cal.Len())
	c.JSON(http.StatusOK, gin.H{"weeks": cal.Len()})
}
