package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crewsheet/internal/model"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"gorm.io/gorm"
)

// TimesheetService owns sheet persistence: load, upsert and delete of
// entries keyed by (team, week, member). Totals are recomputed on every
// load and before every save; a stored total is never trusted.
type TimesheetService struct {
	db    *gorm.DB
	weeks *week.Holder
}

func NewTimesheetService(db *gorm.DB, weeks *week.Holder) *TimesheetService {
	return &TimesheetService{db: db, weeks: weeks}
}

// Load fetches one member's entry. The second return is false when no
// record exists for the key triple.
func (s *TimesheetService) Load(ctx context.Context, team, weekID, memberID string) (*sheet.Entry, bool, error) {
	var rec model.SheetRecord
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND week_id = ? AND member_id = ?", team, weekID, memberID).
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query sheet: %w", err)
	}
	entry, err := recordToEntry(&rec)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// LoadWeek fetches every member's entry for one team and week.
func (s *TimesheetService) LoadWeek(ctx context.Context, team, weekID string) ([]*sheet.Entry, error) {
	var recs []model.SheetRecord
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND week_id = ?", team, weekID).
		Order("member_id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query week sheets: %w", err)
	}
	entries := make([]*sheet.Entry, 0, len(recs))
	for i := range recs {
		entry, err := recordToEntry(&recs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Save upserts an entry on the (team, week, member) key, last write
// wins. Totals are recomputed before the row is written.
func (s *TimesheetService) Save(ctx context.Context, team string, entry *sheet.Entry) error {
	sheet.Recompute(entry)
	entry.Touch(time.Now())

	raw, err := json.Marshal(entry.WorkTypes)
	if err != nil {
		return fmt.Errorf("encode work types: %w", err)
	}

	var existing model.SheetRecord
	err = s.db.WithContext(ctx).
		Where("team_id = ? AND week_id = ? AND member_id = ?", team, entry.WeekID, entry.MemberID).
		First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		rec := entryToRecord(team, entry, string(raw))
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert sheet: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query sheet: %w", err)
	}

	return s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"work_types":    string(raw),
		"working_days":  entry.WorkingDays,
		"leave_days":    entry.LeaveDays,
		"weekly_rating": entry.WeeklyRating,
		"week_total":    entry.Totals.Week,
		"updated_at":    entry.LastUpdated,
	}).Error
}

// Delete forgets one member's entry. Missing rows are not an error.
func (s *TimesheetService) Delete(ctx context.Context, team, weekID, memberID string) error {
	return s.db.WithContext(ctx).
		Where("team_id = ? AND week_id = ? AND member_id = ?", team, weekID, memberID).
		Delete(&model.SheetRecord{}).Error
}

func entryToRecord(team string, e *sheet.Entry, rawTypes string) model.SheetRecord {
	return model.SheetRecord{
		TeamID:       team,
		WeekID:       e.WeekID,
		MemberID:     e.MemberID,
		Year:         e.Year,
		Month:        e.Month,
		WeekNumber:   e.WeekNumber,
		DateRange:    e.DateRange,
		WorkTypes:    rawTypes,
		WorkingDays:  e.WorkingDays,
		LeaveDays:    e.LeaveDays,
		WeeklyRating: e.WeeklyRating,
		WeekTotal:    e.Totals.Week,
		UpdatedAt:    e.LastUpdated,
	}
}

func recordToEntry(rec *model.SheetRecord) (*sheet.Entry, error) {
	entry := &sheet.Entry{
		WeekID:       rec.WeekID,
		MemberID:     rec.MemberID,
		Year:         rec.Year,
		Month:        rec.Month,
		WeekNumber:   rec.WeekNumber,
		DateRange:    rec.DateRange,
		LastUpdated:  rec.UpdatedAt,
		WorkingDays:  rec.WorkingDays,
		LeaveDays:    rec.LeaveDays,
		WeeklyRating: rec.WeeklyRating,
	}
	if rec.WorkTypes != "" {
		if err := json.Unmarshal([]byte(rec.WorkTypes), &entry.WorkTypes); err != nil {
			return nil, fmt.Errorf("decode work types for %s/%s: %w", rec.WeekID, rec.MemberID, err)
		}
	}
	if entry.WorkTypes == nil {
		entry.WorkTypes = make(map[string]sheet.DayValues)
	}
	sheet.Recompute(entry)
	return entry, nil
}
