package period

import (
	"testing"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

func calendar() *models.SchoolPeriod {
	return &models.SchoolPeriod{
		SchoolYear: "2025-2026",
		Q1Start:    1000, Q1End: 2000,
		Q2Start: 2001, Q2End: 3000,
		Q3Start: 3001, Q3End: 4000,
		Q4Start: 4001, Q4End: 5000,
		ShsQ1Start: 1500, ShsQ1End: 2500,
		ShsQ2Start: 2501, ShsQ2End: 3500,
		ShsQ3Start: 3501, ShsQ3End: 4500,
		ShsQ4Start: 4501, ShsQ4End: 5500,
	}
}

func TestDivisionForGrade(t *testing.T) {
	cases := []struct {
		grade  string
		junior bool
		ok     bool
	}{
		{"7", true, true},
		{"10", true, true},
		{"11", false, true},
		{"12", false, true},
		{"6", false, false},
		{"13", false, false},
		{"", false, false},
		{"abc", false, false},
	}
	for _, c := range cases {
		junior, ok := DivisionForGrade(c.grade)
		if junior != c.junior || ok != c.ok {
			t.Errorf("DivisionForGrade(%q) = (%v, %v), want (%v, %v)", c.grade, junior, ok, c.junior, c.ok)
		}
	}
}

func TestResolveBoundaries(t *testing.T) {
	cfg := calendar()

	t.Run("inclusive_on_both_ends", func(t *testing.T) {
		if got := Resolve(1000, true, cfg); got != "Q1" {
			t.Fatalf("start bound: got %q", got)
		}
		if got := Resolve(2000, true, cfg); got != "Q1" {
			t.Fatalf("end bound: got %q", got)
		}
		if got := Resolve(2001, true, cfg); got != "Q2" {
			t.Fatalf("next quarter start: got %q", got)
		}
	})

	t.Run("division_selects_ranges", func(t *testing.T) {
		// 1200 is inside JHS Q1 but before SHS Q1.
		if got := Resolve(1200, true, cfg); got != "Q1" {
			t.Fatalf("junior: got %q", got)
		}
		if got := Resolve(1200, false, cfg); got != Unresolved {
			t.Fatalf("senior: got %q, want unresolved", got)
		}
	})

	t.Run("gap_is_unresolved", func(t *testing.T) {
		if got := Resolve(999, true, cfg); got != Unresolved {
			t.Fatalf("before calendar: got %q", got)
		}
		if got := Resolve(9999, true, cfg); got != Unresolved {
			t.Fatalf("after calendar: got %q", got)
		}
	})

	t.Run("nil_calendar", func(t *testing.T) {
		if got := Resolve(1500, true, nil); got != Unresolved {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("unconfigured_span_skipped", func(t *testing.T) {
		cfg := calendar()
		cfg.Q2Start, cfg.Q2End = 0, 0
		if got := Resolve(2500, true, cfg); got != Unresolved {
			t.Fatalf("got %q, want unresolved for zeroed span", got)
		}
	})
}

func TestQuarterRange(t *testing.T) {
	cfg := calendar()

	start, end, ok := QuarterRange(cfg, "Q3", true)
	if !ok || start != 3001 || end != 4000 {
		t.Fatalf("Q3 junior: got (%d, %d, %v)", start, end, ok)
	}

	start, end, ok = QuarterRange(cfg, "Sem1", false)
	if !ok || start != 1500 || end != 3500 {
		t.Fatalf("Sem1: got (%d, %d, %v)", start, end, ok)
	}

	if _, _, ok := QuarterRange(cfg, "Sem1", true); ok {
		t.Fatal("Sem1 should not exist for the junior division")
	}
	if _, _, ok := QuarterRange(nil, "Q1", true); ok {
		t.Fatal("nil calendar should not resolve")
	}
}
