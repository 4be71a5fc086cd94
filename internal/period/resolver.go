// Package period resolves timestamps to academic-quarter labels from the
// configured school calendar.
package period

import (
	"strconv"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

// Unresolved is returned when no configured quarter contains the timestamp
// or when no calendar exists.
const Unresolved = ""

// DivisionForGrade maps a student grade to a division: grades 7-10 are
// junior (JHS), 11-12 senior (SHS). ok is false for any other grade value,
// in which case the period is unresolvable and recording must reject.
func DivisionForGrade(grade string) (junior, ok bool) {
	n, err := strconv.Atoi(grade)
	if err != nil {
		return false, false
	}
	switch {
	case n >= 7 && n <= 10:
		return true, true
	case n == 11 || n == 12:
		return false, true
	default:
		return false, false
	}
}

// Resolve returns the quarter label (Q1..Q4) whose range contains ts,
// inclusive on both ends. The JHS ranges apply when junior, the SHS ranges
// otherwise. Returns Unresolved when cfg is nil or nothing matches.
func Resolve(ts int64, junior bool, cfg *models.SchoolPeriod) string {
	if cfg == nil {
		return Unresolved
	}
	type span struct {
		label      string
		start, end int64
	}
	var spans []span
	if junior {
		spans = []span{
			{"Q1", cfg.Q1Start, cfg.Q1End},
			{"Q2", cfg.Q2Start, cfg.Q2End},
			{"Q3", cfg.Q3Start, cfg.Q3End},
			{"Q4", cfg.Q4Start, cfg.Q4End},
		}
	} else {
		spans = []span{
			{"Q1", cfg.ShsQ1Start, cfg.ShsQ1End},
			{"Q2", cfg.ShsQ2Start, cfg.ShsQ2End},
			{"Q3", cfg.ShsQ3Start, cfg.ShsQ3End},
			{"Q4", cfg.ShsQ4Start, cfg.ShsQ4End},
		}
	}
	for _, s := range spans {
		if s.start == 0 && s.end == 0 {
			continue
		}
		if ts >= s.start && ts <= s.end {
			return s.label
		}
	}
	return Unresolved
}

// QuarterRange returns the configured [start, end] for a quarter label,
// used by exports to bound their date windows. ok is false for an unknown
// label or a nil calendar.
func QuarterRange(cfg *models.SchoolPeriod, label string, junior bool) (start, end int64, ok bool) {
	if cfg == nil {
		return 0, 0, false
	}
	if junior {
		switch label {
		case "Q1":
			return cfg.Q1Start, cfg.Q1End, true
		case "Q2":
			return cfg.Q2Start, cfg.Q2End, true
		case "Q3":
			return cfg.Q3Start, cfg.Q3End, true
		case "Q4":
			return cfg.Q4Start, cfg.Q4End, true
		}
		return 0, 0, false
	}
	switch label {
	case "Q1":
		return cfg.ShsQ1Start, cfg.ShsQ1End, true
	case "Q2":
		return cfg.ShsQ2Start, cfg.ShsQ2End, true
	case "Q3":
		return cfg.ShsQ3Start, cfg.ShsQ3End, true
	case "Q4":
		return cfg.ShsQ4Start, cfg.ShsQ4End, true
	case "Sem1":
		return cfg.ShsQ1Start, cfg.ShsQ2End, true
	case "Sem2":
		return cfg.ShsQ3Start, cfg.ShsQ4End, true
	}
	return 0, 0, false
}
