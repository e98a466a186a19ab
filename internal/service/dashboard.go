package service

import (
	"context"
	"fmt"
	"time"

	"crewsheet/internal/sheet"
)

// WeekSummary is one week's slice of a monthly rollup.
type WeekSummary struct {
	WeekID    string  `json:"week_id"`
	DateRange string  `json:"date_range"`
	Total     float64 `json:"total"`
}

// MonthlySummary aggregates a team's entries across all weeks starting
// in one month, the shape the dashboard renders.
type MonthlySummary struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	MonthName      string             `json:"month_name"`
	Weeks          []WeekSummary      `json:"weeks"`
	MemberTotals   map[string]float64 `json:"member_totals"`
	WorkTypeTotals map[string]float64 `json:"work_type_totals"`
	MonthTotal     float64            `json:"month_total"`
}

// MonthlyTotals loads every entry of the month's weeks and rolls them
// up per week, per member and per work type. Weeks are resolved through
// the calendar by start month, so a week spanning a month boundary
// counts toward the month it starts in.
func (s *TimesheetService) MonthlyTotals(ctx context.Context, team string, year, month int) (*MonthlySummary, error) {
	weeks := s.weeks.Calendar().ByMonth(year, month)

	summary := &MonthlySummary{
		Year:           year,
		Month:          month,
		MonthName:      time.Month(month).String(),
		MemberTotals:   make(map[string]float64),
		WorkTypeTotals: make(map[string]float64),
	}

	for _, w := range weeks {
		entries, err := s.LoadWeek(ctx, team, w.ID)
		if err != nil {
			return nil, fmt.Errorf("load week %s: %w", w.ID, err)
		}
		ws := WeekSummary{WeekID: w.ID, DateRange: w.DateRange()}
		for _, e := range entries {
			ws.Total += e.Totals.Week
			summary.MemberTotals[e.MemberID] += e.Totals.Week
			for _, wt := range sheet.WorkTypes {
				for _, d := range sheet.Days {
					summary.WorkTypeTotals[wt] += e.WorkTypes[wt][d]
				}
			}
		}
		summary.MonthTotal += ws.Total
		summary.Weeks = append(summary.Weeks, ws)
	}
	return summary, nil
}
