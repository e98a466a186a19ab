package service

import (
	"context"
	"testing"
	"time"

	"crewsheet/internal/model"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Member{}, &model.SheetRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testHolder(t *testing.T) *week.Holder {
	t.Helper()
	epoch, _ := time.Parse("2006-01-02", "2025-01-06")
	now, _ := time.Parse("2006-01-02", "2025-01-08")
	cal, err := week.Generate(epoch, now, 3)
	if err != nil {
		t.Fatalf("generate calendar: %v", err)
	}
	return week.NewHolder(cal)
}

func testEntry(t *testing.T, weeks *week.Holder, weekID, memberID string) *sheet.Entry {
	t.Helper()
	e, ok := sheet.NewTemplate(weeks.Calendar(), weekID, memberID, time.Now())
	if !ok {
		t.Fatalf("no template for week %s", weekID)
	}
	return e
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	e := testEntry(t, svc.weeks, "2025-01-06", "ana")
	e.WorkTypes["screen"]["mon"] = 6.7
	e.WorkingDays = 5
	e.WeeklyRating = 4

	if err := svc.Save(ctx, "vfx", e); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, found, err := svc.Load(ctx, "vfx", "2025-01-06", "ana")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.WorkTypes["screen"]["mon"] != 6.7 {
		t.Fatalf("raw cell lost: %+v", loaded.WorkTypes["screen"])
	}
	if loaded.Totals.Week != 6.7 || loaded.Totals.Daily["mon"] != 6.7 {
		t.Fatalf("totals %+v", loaded.Totals)
	}
	if loaded.WorkingDays != 5 || loaded.WeeklyRating != 4 {
		t.Fatalf("scalar fields lost: %+v", loaded)
	}
	if loaded.Year != 2025 || loaded.WeekNumber != 1 || loaded.DateRange != "Jan 6 - Jan 10" {
		t.Fatalf("snapshot fields lost: %+v", loaded)
	}
}

func TestLoadMissing(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	_, found, err := svc.Load(context.Background(), "vfx", "2025-01-06", "ghost")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestSaveUpsertsOnKeyTriple(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	e := testEntry(t, svc.weeks, "2025-01-06", "ana")
	e.WorkTypes["ost"]["mon"] = 2
	if err := svc.Save(ctx, "vfx", e); err != nil {
		t.Fatalf("first save: %v", err)
	}

	e2 := testEntry(t, svc.weeks, "2025-01-06", "ana")
	e2.WorkTypes["ost"]["mon"] = 8
	if err := svc.Save(ctx, "vfx", e2); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int64
	svc.db.Model(&model.SheetRecord{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", count)
	}

	loaded, _, err := svc.Load(ctx, "vfx", "2025-01-06", "ana")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.WorkTypes["ost"]["mon"] != 8 || loaded.Totals.Week != 8 {
		t.Fatalf("last write should win, got %+v", loaded.Totals)
	}
}

func TestSaveKeyedByTeam(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	a := testEntry(t, svc.weeks, "2025-01-06", "ana")
	a.WorkTypes["hand"]["tue"] = 1
	b := testEntry(t, svc.weeks, "2025-01-06", "ana")
	b.WorkTypes["hand"]["tue"] = 9

	if err := svc.Save(ctx, "vfx", a); err != nil {
		t.Fatalf("save vfx: %v", err)
	}
	if err := svc.Save(ctx, "motion", b); err != nil {
		t.Fatalf("save motion: %v", err)
	}

	loaded, found, _ := svc.Load(ctx, "vfx", "2025-01-06", "ana")
	if !found || loaded.WorkTypes["hand"]["tue"] != 1 {
		t.Fatalf("teams must not share rows: %+v", loaded)
	}
}

func TestLoadRecomputesStoredTotals(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	e := testEntry(t, svc.weeks, "2025-01-06", "ana")
	e.WorkTypes["fss"]["wed"] = 3
	if err := svc.Save(ctx, "vfx", e); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Corrupt the stored total; load must not trust it.
	svc.db.Model(&model.SheetRecord{}).
		Where("team_id = ? AND week_id = ? AND member_id = ?", "vfx", "2025-01-06", "ana").
		Update("week_total", 999)

	loaded, _, err := svc.Load(ctx, "vfx", "2025-01-06", "ana")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Totals.Week != 3 {
		t.Fatalf("stored total trusted: %v", loaded.Totals.Week)
	}
}

func TestDelete(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	e := testEntry(t, svc.weeks, "2025-01-06", "ana")
	if err := svc.Save(ctx, "vfx", e); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, "vfx", "2025-01-06", "ana"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := svc.Load(ctx, "vfx", "2025-01-06", "ana"); found {
		t.Fatal("entry should be gone")
	}
	// Deleting again is not an error.
	if err := svc.Delete(ctx, "vfx", "2025-01-06", "ana"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLoadWeek(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	for _, member := range []string{"bo", "ana"} {
		e := testEntry(t, svc.weeks, "2025-01-13", member)
		e.WorkTypes["intro"]["mon"] = 1
		if err := svc.Save(ctx, "vfx", e); err != nil {
			t.Fatalf("save %s: %v", member, err)
		}
	}

	entries, err := svc.LoadWeek(ctx, "vfx", "2025-01-13")
	if err != nil {
		t.Fatalf("load week: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].MemberID != "ana" || entries[1].MemberID != "bo" {
		t.Fatalf("expected member order ana, bo: %s, %s", entries[0].MemberID, entries[1].MemberID)
	}
}

func TestMonthlyTotals(t *testing.T) {
	svc := NewTimesheetService(testDB(t), testHolder(t))
	ctx := context.Background()

	// Two January weeks for ana, one for bo.
	e1 := testEntry(t, svc.weeks, "2025-01-06", "ana")
	e1.WorkTypes["screen"]["mon"] = 10
	e2 := testEntry(t, svc.weeks, "2025-01-13", "ana")
	e2.WorkTypes["vo"]["fri"] = 5
	e3 := testEntry(t, svc.weeks, "2025-01-13", "bo")
	e3.WorkTypes["screen"]["tue"] = 2
	// A February week that must not count toward January.
	e4 := testEntry(t, svc.weeks, "2025-02-03", "ana")
	e4.WorkTypes["ost"]["mon"] = 100

	for _, e := range []*sheet.Entry{e1, e2, e3, e4} {
		if err := svc.Save(ctx, "vfx", e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	summary, err := svc.MonthlyTotals(ctx, "vfx", 2025, 1)
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if summary.MonthName != "January" {
		t.Fatalf("month name %q", summary.MonthName)
	}
	if summary.MonthTotal != 17 {
		t.Fatalf("month total %v, want 17", summary.MonthTotal)
	}
	if summary.MemberTotals["ana"] != 15 || summary.MemberTotals["bo"] != 2 {
		t.Fatalf("member totals %+v", summary.MemberTotals)
	}
	if summary.WorkTypeTotals["screen"] != 12 || summary.WorkTypeTotals["vo"] != 5 {
		t.Fatalf("work type totals %+v", summary.WorkTypeTotals)
	}
	if len(summary.Weeks) != 4 {
		t.Fatalf("expected 4 January week slices, got %d", len(summary.Weeks))
	}
}
