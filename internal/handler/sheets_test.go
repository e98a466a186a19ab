package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crewsheet/internal/model"
	"crewsheet/internal/service"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sheetRouter(t *testing.T) (*gin.Engine, *week.Holder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Member{}, &model.SheetRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	weeks := testWeeks(t)
	h := NewSheetHandler(service.NewTimesheetService(db, weeks), weeks)

	r := gin.New()
	r.GET("/api/teams/:team/weeks/:week/sheets", h.ListWeek)
	r.GET("/api/teams/:team/weeks/:week/sheets/:member", h.Get)
	r.PUT("/api/teams/:team/weeks/:week/sheets/:member", h.Put)
	r.DELETE("/api/teams/:team/weeks/:week/sheets/:member", h.Delete)
	r.GET("/api/teams/:team/dashboard", h.Dashboard)
	return r, weeks
}

func fullWorkTypes(cells map[string]map[string]float64) map[string]sheet.DayValues {
	types := make(map[string]sheet.DayValues)
	for _, wt := range sheet.WorkTypes {
		values := make(sheet.DayValues)
		for _, d := range sheet.Days {
			values[d] = 0
		}
		types[wt] = values
	}
	for wt, days := range cells {
		for d, v := range days {
			types[wt][d] = v
		}
	}
	return types
}

func putSheet(t *testing.T, r *gin.Engine, path string, req model.SaveSheetRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest("PUT", path, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func TestPutSheetValidAndReload(t *testing.T) {
	r, _ := sheetRouter(t)

	w := putSheet(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana", model.SaveSheetRequest{
		WorkTypes:   fullWorkTypes(map[string]map[string]float64{"screen": {"mon": 6.7}}),
		WorkingDays: 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put status %d, body %s", w.Code, w.Body.String())
	}
	var saved sheet.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.Totals.Week != 6.7 || saved.Totals.Daily["mon"] != 6.7 {
		t.Fatalf("totals not recomputed on save: %+v", saved.Totals)
	}

	got := get(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana")
	if got.Code != http.StatusOK {
		t.Fatalf("get status %d", got.Code)
	}
	var loaded sheet.Entry
	if err := json.Unmarshal(got.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.WorkTypes["screen"]["mon"] != 6.7 || loaded.WorkingDays != 5 {
		t.Fatalf("reload mismatch: %+v", loaded)
	}
}

func TestPutSheetValidationFailure(t *testing.T) {
	r, _ := sheetRouter(t)

	types := fullWorkTypes(nil)
	types["screen"]["tue"] = -1
	delete(types, "vo")

	w := putSheet(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana", model.SaveSheetRequest{WorkTypes: types})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", w.Code)
	}
	var result sheet.ValidationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Valid || len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %+v", result)
	}

	// Nothing was written.
	got := get(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana")
	var entry sheet.Entry
	json.Unmarshal(got.Body.Bytes(), &entry)
	if entry.Totals.Week != 0 {
		t.Fatalf("invalid entry was persisted: %+v", entry.Totals)
	}
}

func TestPutSheetUnknownWeek(t *testing.T) {
	r, _ := sheetRouter(t)
	w := putSheet(t, r, "/api/teams/vfx/weeks/2030-01-07/sheets/ana", model.SaveSheetRequest{
		WorkTypes: fullWorkTypes(nil),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestGetSheetReturnsTemplateWhenUnstored(t *testing.T) {
	r, _ := sheetRouter(t)
	w := get(t, r, "/api/teams/vfx/weeks/2025-01-13/sheets/bo")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var entry sheet.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.WeekID != "2025-01-13" || entry.MemberID != "bo" || entry.Totals.Week != 0 {
		t.Fatalf("template %+v", entry)
	}
	if len(entry.WorkTypes) != len(sheet.WorkTypes) {
		t.Fatalf("template missing work types: %d", len(entry.WorkTypes))
	}
}

func TestDeleteSheet(t *testing.T) {
	r, _ := sheetRouter(t)

	putSheet(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana", model.SaveSheetRequest{
		WorkTypes: fullWorkTypes(map[string]map[string]float64{"ost": {"wed": 2}}),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/teams/vfx/weeks/2025-01-06/sheets/ana", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status %d", w.Code)
	}

	var listed []sheet.Entry
	got := get(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets")
	if err := json.Unmarshal(got.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(listed))
	}
}

func TestDashboard(t *testing.T) {
	r, _ := sheetRouter(t)

	putSheet(t, r, "/api/teams/vfx/weeks/2025-01-06/sheets/ana", model.SaveSheetRequest{
		WorkTypes: fullWorkTypes(map[string]map[string]float64{"screen": {"mon": 10}}),
	})
	putSheet(t, r, "/api/teams/vfx/weeks/2025-01-13/sheets/bo", model.SaveSheetRequest{
		WorkTypes: fullWorkTypes(map[string]map[string]float64{"vo": {"fri": 5}}),
	})

	w := get(t, r, "/api/teams/vfx/dashboard?year=2025&month=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var summary service.MonthlySummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.MonthTotal != 15 {
		t.Fatalf("month total %v, want 15", summary.MonthTotal)
	}
	if summary.MemberTotals["ana"] != 10 || summary.MemberTotals["bo"] != 5 {
		t.Fatalf("member totals %+v", summary.MemberTotals)
	}

	if w := get(t, r, "/api/teams/vfx/dashboard?year=2025&month=13"); w.Code != http.StatusBadRequest {
		t.Fatalf("month 13 status %d, want 400", w.Code)
	}
}
