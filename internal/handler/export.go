package handler

import (
	"fmt"
	"net/http"

	"crewsheet/internal/service"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ExportHandler struct {
	sheets *service.TimesheetService
	weeks  *week.Holder
}

func NewExportHandler(sheets *service.TimesheetService, weeks *week.Holder) *ExportHandler {
	return &ExportHandler{sheets: sheets, weeks: weeks}
}

// GET /api/teams/:team/weeks/:week/export writes one xlsx row per member and
// work type, same column layout the importer accepts.
func (h *ExportHandler) Week(c *gin.Context) {
	w, ok := h.weeks.Calendar().ByID(c.Param("week"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not found"})
		return
	}
	entries, err := h.sheets.LoadWeek(c.Request.Context(), c.Param("team"), w.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	name := f.GetSheetName(0)

	header := []interface{}{"member", "week", "work type", "mon", "tue", "wed", "thu", "fri", "total"}
	f.SetSheetRow(name, "A1", &header)

	rowNum := 2
	for _, e := range entries {
		for _, wt := range sheet.WorkTypes {
			values := e.WorkTypes[wt]
			var total float64
			row := []interface{}{e.MemberID, e.WeekID, wt}
			for _, d := range sheet.Days {
				row = append(row, values[d])
				total += values[d]
			}
			row = append(row, total)
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			f.SetSheetRow(name, cell, &row)
			rowNum++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("build workbook: %v", err)})
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", c.Param("team"), w.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
