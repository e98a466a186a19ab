package sheet

import (
	"fmt"
	"math"
	"strings"

	"crewsheet/internal/week"
)

// ValidationResult carries every problem found in one pass so a UI can
// surface them together instead of forcing a fix-one-resubmit loop.
type ValidationResult struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}

// Validate checks an entry against the canonical shape. It accumulates
// failures in a fixed order: week id, member id, then each work type
// (missing keys skip their day checks), then each day value. It never
// mutates the entry and performs no I/O.
//
// This is the strict counterpart to Recompute, which tolerates the same
// holes by coercing them to zero.
func Validate(cal *week.Calendar, e *Entry) ValidationResult {
	var errs []string

	if _, ok := cal.ByID(e.WeekID); !ok {
		errs = append(errs, "Invalid week ID")
	}
	if strings.TrimSpace(e.MemberID) == "" {
		errs = append(errs, "Member ID is required")
	}

	for _, wt := range WorkTypes {
		values, ok := e.WorkTypes[wt]
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing work type: %s", wt))
			continue
		}
		for _, d := range Days {
			v, ok := values[d]
			if !ok || math.IsNaN(v) || v < 0 {
				errs = append(errs, fmt.Sprintf("Invalid value for %s on %s", wt, d))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
