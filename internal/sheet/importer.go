package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"crewsheet/internal/week"

	"github.com/xuri/excelize/v2"
)

// ImportRow is one parsed spreadsheet line: a member's hours for one
// work type in one week.
type ImportRow struct {
	MemberName string    `json:"member_name"`
	WeekID     string    `json:"week_id"`
	WorkType   string    `json:"work_type"`
	Values     DayValues `json:"values"`
}

// ParseWorkbook reads rows of the form
//
//	member | week (YYYY-MM-DD Monday) | work type | mon | tue | wed | thu | fri
//
// from the first sheet of an xlsx workbook. The first row is treated as
// a header. Blank lines are skipped; malformed cells fail the parse so
// a bad upload is rejected whole rather than half-imported.
func ParseWorkbook(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var out []ImportRow
	for i, cells := range rows {
		if i == 0 || isBlankRow(cells) {
			continue
		}
		if len(cells) < 3 {
			return nil, fmt.Errorf("row %d: expected at least member, week and work type", i+1)
		}
		row := ImportRow{
			MemberName: strings.TrimSpace(cells[0]),
			WeekID:     strings.TrimSpace(cells[1]),
			WorkType:   strings.ToLower(strings.TrimSpace(cells[2])),
			Values:     make(DayValues, len(Days)),
		}
		if !knownWorkType(row.WorkType) {
			return nil, fmt.Errorf("row %d: unknown work type %q", i+1, row.WorkType)
		}
		for j, d := range Days {
			col := 3 + j
			if col >= len(cells) || strings.TrimSpace(cells[col]) == "" {
				row.Values[d] = 0
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cells[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s value %q", i+1, d, cells[col])
			}
			row.Values[d] = v
		}
		out = append(out, row)
	}
	return out, nil
}

// InRecentWindow reports whether a week belongs to the rolling import
// window: the current month or any later month of the generated
// horizon, judged by the week's start date. Weeks from past months are
// rejected so stale spreadsheet rows cannot overwrite settled data.
func InRecentWindow(cal *week.Calendar, weekID string, now time.Time) bool {
	w, ok := cal.ByID(weekID)
	if !ok {
		return false
	}
	if w.Year != now.Year() {
		return w.Year > now.Year()
	}
	return w.Month >= int(now.Month())
}

func knownWorkType(name string) bool {
	for _, wt := range WorkTypes {
		if wt == name {
			return true
		}
	}
	return false
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
