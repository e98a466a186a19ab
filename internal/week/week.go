package week

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrEpochNotMonday is returned by Generate when the configured calendar
// epoch does not fall on a Monday. Every downstream invariant assumes
// Monday-anchored weeks, so this aborts generation outright.
var ErrEpochNotMonday = errors.New("calendar epoch must be a Monday")

// Day describes one weekday inside a work week.
type Day struct {
	Name    string    `json:"name"`
	Short   string    `json:"short"`
	Date    time.Time `json:"date"`
	Ordinal int       `json:"ordinal"` // 1 = Monday .. 5 = Friday
}

// Week is one Monday-through-Friday period. Weeks are immutable after
// generation; status flags are snapshots taken against the "now" passed
// to Generate.
type Week struct {
	ID        string    `json:"id"` // YYYY-MM-DD of the Monday, stable key
	Number    int       `json:"week_number"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12, from the start date
	MonthName string    `json:"month_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      []Day     `json:"days"`
	IsPast    bool      `json:"is_past"`
	IsCurrent bool      `json:"is_current"`
	IsFuture  bool      `json:"is_future"`
}

// DateRange renders the week span for display, e.g. "Jan 6 - Jan 10".
func (w Week) DateRange() string {
	return fmt.Sprintf("%s - %s", w.StartDate.Format("Jan 2"), w.EndDate.Format("Jan 2"))
}

// MonthYear renders the grouping label, e.g. "January 2025".
func (w Week) MonthYear() string {
	return fmt.Sprintf("%s %d", w.MonthName, w.Year)
}

// SelectorOption is the projection a week picker depends on.
type SelectorOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	MonthYear string `json:"month_year"`
	IsPast    bool   `json:"is_past"`
	IsCurrent bool   `json:"is_current"`
	IsFuture  bool   `json:"is_future"`
}

// Calendar is the generated week sequence. It is read-only after
// Generate; replace the whole value to regenerate.
type Calendar struct {
	weeks []Week
	byID  map[string]int
}

var dayNames = [5]struct{ name, short string }{
	{"Monday", "Mon"},
	{"Tuesday", "Tue"},
	{"Wednesday", "Wed"},
	{"Thursday", "Thu"},
	{"Friday", "Fri"},
}

// Generate builds the ordered week sequence from epoch through
// now + horizonMonths months. The epoch must be a Monday. "now" is
// explicit so status flags are deterministic and testable.
func Generate(epoch, now time.Time, horizonMonths int) (*Calendar, error) {
	if epoch.Weekday() != time.Monday {
		return nil, fmt.Errorf("%w: got %s (%s)", ErrEpochNotMonday, epoch.Format("2006-01-02"), epoch.Weekday())
	}

	today := truncateDay(now)
	limit := today.AddDate(0, horizonMonths, 0)

	cal := &Calendar{byID: make(map[string]int)}
	for cursor := truncateDay(epoch); !cursor.After(limit); cursor = cursor.AddDate(0, 0, 7) {
		w := buildWeek(cursor, len(cal.weeks)+1, today)
		cal.byID[w.ID] = len(cal.weeks)
		cal.weeks = append(cal.weeks, w)
	}
	return cal, nil
}

func buildWeek(monday time.Time, number int, today time.Time) Week {
	friday := monday.AddDate(0, 0, 4)

	days := make([]Day, 0, 5)
	for i, d := range dayNames {
		days = append(days, Day{
			Name:    d.name,
			Short:   d.short,
			Date:    monday.AddDate(0, 0, i),
			Ordinal: i + 1,
		})
	}

	w := Week{
		ID:        monday.Format("2006-01-02"),
		Number:    number,
		Year:      monday.Year(),
		Month:     int(monday.Month()),
		MonthName: monday.Month().String(),
		StartDate: monday,
		EndDate:   friday,
		Days:      days,
	}
	switch {
	case today.Before(monday):
		w.IsFuture = true
	case today.After(friday):
		w.IsPast = true
	default:
		w.IsCurrent = true
	}
	return w
}

// Weeks returns the full generated sequence in chronological order.
// Callers must treat the slice as read-only.
func (c *Calendar) Weeks() []Week { return c.weeks }

// Len reports how many weeks were generated.
func (c *Calendar) Len() int { return len(c.weeks) }

// ByID resolves a week by its Monday date key.
func (c *Calendar) ByID(id string) (Week, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Week{}, false
	}
	return c.weeks[idx], true
}

// ByMonth lists the weeks whose start date falls in the given year and
// month (1-12).
func (c *Calendar) ByMonth(year, month int) []Week {
	var out []Week
	for _, w := range c.weeks {
		if w.Year == year && w.Month == month {
			out = append(out, w)
		}
	}
	return out
}

// ByMonthName lists the weeks for a month name like "January". A zero
// year matches every year.
func (c *Calendar) ByMonthName(name string, year int) []Week {
	var out []Week
	for _, w := range c.weeks {
		if w.MonthName != name {
			continue
		}
		if year != 0 && w.Year != year {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Current returns the week flagged current at generation time.
func (c *Calendar) Current() (Week, bool) {
	for _, w := range c.weeks {
		if w.IsCurrent {
			return w, true
		}
	}
	return Week{}, false
}

// ForDate resolves the week containing the given date. Saturdays and
// Sundays belong to no work week and report not found.
func (c *Calendar) ForDate(date time.Time) (Week, bool) {
	d := truncateDay(date)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Week{}, false
	}
	for _, w := range c.weeks {
		if !d.Before(w.StartDate) && !d.After(w.EndDate) {
			return w, true
		}
	}
	return Week{}, false
}

// MonthLabels lists the distinct "Month Year" labels across the
// sequence, sorted lexicographically.
func (c *Calendar) MonthLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, w := range c.weeks {
		label := w.MonthYear()
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// SelectorOptions projects every week into the shape week pickers
// consume, in chronological order.
func (c *Calendar) SelectorOptions() []SelectorOption {
	out := make([]SelectorOption, 0, len(c.weeks))
	for _, w := range c.weeks {
		out = append(out, SelectorOption{
			ID:        w.ID,
			Label:     fmt.Sprintf("Week %d (%s)", w.Number, w.DateRange()),
			MonthYear: w.MonthYear(),
			IsPast:    w.IsPast,
			IsCurrent: w.IsCurrent,
			IsFuture:  w.IsFuture,
		})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
