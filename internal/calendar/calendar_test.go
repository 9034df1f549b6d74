package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNewTimeRange_RejectsEmptyAndReversed(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 10, 0)

	if _, err := NewTimeRange(start, start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange for empty range, got %v", err)
	}
	if _, err := NewTimeRange(start, start.Add(-time.Hour)); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange for reversed range, got %v", err)
	}
	if _, err := NewTimeRange(time.Time{}, start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange for zero start, got %v", err)
	}
}

func TestNewTimeRange_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, loc)

	tr, err := NewTimeRange(start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Start.Location() != time.UTC || tr.Start.Hour() != 9 {
		t.Fatalf("expected 09:00 UTC, got %v", tr.Start)
	}
}

func TestValidateLesson_MaxDuration(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 9, 0)

	if _, err := ValidateLesson(start, start.Add(9*time.Hour), 8*time.Hour); !errors.Is(err, ErrRangeTooLong) {
		t.Fatalf("expected ErrRangeTooLong, got %v", err)
	}
	if _, err := ValidateLesson(start, start.Add(9*time.Hour), 0); err != nil {
		t.Fatalf("unexpected error without limit: %v", err)
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	base := TimeRange{
		Start: mustTime(t, 2025, 1, 1, 10, 0),
		End:   mustTime(t, 2025, 1, 1, 11, 0),
	}

	cases := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"touching end", TimeRange{Start: mustTime(t, 2025, 1, 1, 11, 0), End: mustTime(t, 2025, 1, 1, 12, 0)}, false},
		{"touching start", TimeRange{Start: mustTime(t, 2025, 1, 1, 9, 0), End: mustTime(t, 2025, 1, 1, 10, 0)}, false},
		{"partial", TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 30), End: mustTime(t, 2025, 1, 1, 11, 30)}, true},
		{"contained", TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 15), End: mustTime(t, 2025, 1, 1, 10, 45)}, true},
		{"identical", base, true},
	}
	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Fatalf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		if got := tc.other.Overlaps(base); got != tc.want {
			t.Fatalf("%s: Overlaps is not symmetric", tc.name)
		}
	}
}

func TestFormatSlotForUser_Basic(t *testing.T) {
	tr := TimeRange{
		Start: mustTime(t, 2025, 1, 1, 10, 0),
		End:   mustTime(t, 2025, 1, 1, 11, 0),
	}

	got := FormatSlotForUser(tr, time.UTC, false, "")
	want := "Wednesday, 01.01.2025, 10:00–11:00"
	if got != want {
		t.Fatalf("FormatSlotForUser = %q, want %q", got, want)
	}
}

func TestFormatSlotForUser_WithID(t *testing.T) {
	tr := TimeRange{
		Start: mustTime(t, 2025, 1, 1, 10, 0),
		End:   mustTime(t, 2025, 1, 1, 11, 0),
	}

	str := FormatSlotForUser(tr, time.UTC, true, "bk-123")
	if !strings.Contains(str, "(ID: bk-123)") {
		t.Fatalf("expected string with ID, got %q", str)
	}
}

func TestPaginate_Basic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	page := Paginate(items, 1, 5)

	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on page 1, got %d", len(page.Items))
	}
	if page.HasPrev {
		t.Fatalf("expected HasPrev=false on first page")
	}
	if !page.HasNext {
		t.Fatalf("expected HasNext=true on first page")
	}
	if page.Total != len(items) {
		t.Fatalf("expected Total=%d, got %d", len(items), page.Total)
	}
}

func TestPaginate_LastPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	page := Paginate(items, 2, 4)

	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items on last page, got %d", len(page.Items))
	}
	if !page.HasPrev || page.HasNext {
		t.Fatalf("unexpected prev/next on last page: %+v", page)
	}
}

func TestPaginate_Empty(t *testing.T) {
	var items []int
	page := Paginate(items, 1, 10)

	if len(page.Items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(page.Items))
	}
	if page.HasNext || page.HasPrev {
		t.Fatalf("expected no prev/next for empty list")
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(3, 20); got != 40 {
		t.Fatalf("Offset(3, 20) = %d, want 40", got)
	}
	if got := Offset(0, 20); got != 0 {
		t.Fatalf("Offset(0, 20) = %d, want 0", got)
	}
}
