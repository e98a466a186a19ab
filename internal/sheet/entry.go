package sheet

import (
	"time"

	"crewsheet/internal/week"
)

// WorkTypes is the closed set of production work categories tracked per
// day. Iteration over this slice keeps summation order fixed so totals
// are bit-reproducible.
var WorkTypes = []string{"ost", "screen", "firstcut", "hand", "fss", "character", "vo", "intro"}

// Days are the five tracked weekday keys, Monday first.
var Days = []string{"mon", "tue", "wed", "thu", "fri"}

// DayValues maps a day key (mon..fri) to hours for one work type.
type DayValues map[string]float64

// Totals is derived state, recomputed from the raw cells by Recompute.
// Never hand-edited and never trusted from storage.
type Totals struct {
	Daily map[string]float64 `json:"daily_totals"`
	Week  float64            `json:"week_total"`
}

// Entry is one member's timesheet record for one week. Year, Month,
// WeekNumber and DateRange are snapshots copied from the week at
// creation time; regenerating the calendar does not rewrite them.
type Entry struct {
	WeekID      string    `json:"week_id"`
	MemberID    string    `json:"member_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	WeekNumber  int       `json:"week_number"`
	DateRange   string    `json:"date_range"`
	LastUpdated time.Time `json:"last_updated"`

	// WorkTypes holds the raw per-work-type per-day hours, the only
	// mutable data on an entry.
	WorkTypes map[string]DayValues `json:"work_types"`

	WorkingDays  float64 `json:"working_days"`
	LeaveDays    float64 `json:"leave_days"`
	WeeklyRating float64 `json:"weekly_rating"`

	Totals Totals `json:"totals"`
}

// NewTemplate builds an empty entry bound to a week and member. All 40
// cells and both total structures start at zero. Returns false when the
// week id does not resolve; no entry is fabricated for unknown weeks.
func NewTemplate(cal *week.Calendar, weekID, memberID string, now time.Time) (*Entry, bool) {
	w, ok := cal.ByID(weekID)
	if !ok {
		return nil, false
	}

	types := make(map[string]DayValues, len(WorkTypes))
	for _, wt := range WorkTypes {
		values := make(DayValues, len(Days))
		for _, d := range Days {
			values[d] = 0
		}
		types[wt] = values
	}

	return &Entry{
		WeekID:      w.ID,
		MemberID:    memberID,
		Year:        w.Year,
		Month:       w.Month,
		WeekNumber:  w.Number,
		DateRange:   w.DateRange(),
		LastUpdated: now,
		WorkTypes:   types,
		Totals:      zeroTotals(),
	}, true
}

// Touch stamps the mutation time.
func (e *Entry) Touch(now time.Time) { e.LastUpdated = now }

func zeroTotals() Totals {
	daily := make(map[string]float64, len(Days))
	for _, d := range Days {
		daily[d] = 0
	}
	return Totals{Daily: daily}
}
