package qa

import (
	"strings"
	"testing"
	"time"

	"github.com/edgard/nanabot/internal/sheets"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

var summaryDayStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestSummarizeSleep(t *testing.T) {
	records := []sheets.SleepRecord{
		{
			Timestamp:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
			Start:       "07:30",
			End:         "09:00",
			DurationMin: intPtr(90),
			Kind:        "sleep",
		},
		{
			Timestamp:   time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
			Start:       "13:10",
			End:         "14:30",
			DurationMin: intPtr(80),
			Kind:        "nap",
		},
		{
			// Earlier in the week, counted but not detailed.
			Timestamp:   time.Date(2025, 5, 29, 20, 0, 0, 0, time.UTC),
			Start:       "19:30",
			End:         "06:00",
			DurationMin: intPtr(630),
			Kind:        "sleep",
		},
	}

	got := summarizeSleep(records, summaryDayStart)
	want := "Sleep: 2 records today, 3 in the last 7 days. 170 minutes slept today.\n" +
		"- 09:30 07:30-09:00 sleep (90 min)\n" +
		"- 14:30 13:10-14:30 nap (80 min)"
	if got != want {
		t.Errorf("summarizeSleep() = %q, want %q", got, want)
	}
}

func TestSummarizeSleepEmpty(t *testing.T) {
	got := summarizeSleep(nil, summaryDayStart)
	want := "Sleep: 0 records today, 0 in the last 7 days."
	if got != want {
		t.Errorf("summarizeSleep(nil) = %q, want %q", got, want)
	}
}

func TestSummarizeFood(t *testing.T) {
	records := []sheets.FoodRecord{
		{
			Timestamp: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
			Item:      "formula",
			QtyValue:  floatPtr(120),
			QtyUnit:   "ml",
			Method:    "bottle",
		},
		{
			Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
			Item:      "porridge",
			Method:    "solids",
		},
		{
			Timestamp: time.Date(2025, 5, 31, 8, 0, 0, 0, time.UTC),
			Item:      "formula",
			QtyValue:  floatPtr(100),
			QtyUnit:   "ml",
			Method:    "bottle",
		},
	}

	got := summarizeFood(records, summaryDayStart)
	want := "Food: 2 records today, 3 in the last 7 days. 120 ml drunk today.\n" +
		"- 08:00 formula, 120 ml (bottle)\n" +
		"- 12:30 porridge (solids)"
	if got != want {
		t.Errorf("summarizeFood() = %q, want %q", got, want)
	}
}

func TestSummarizeBehavior(t *testing.T) {
	records := []sheets.BehaviorRecord{
		{
			Timestamp:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			Category:    "Crying",
			Intensity:   intPtr(4),
			Description: "cried before the nap",
		},
		{
			Timestamp:   time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC),
			Category:    "Behavior",
			Description: "smiled a lot",
		},
	}

	got := summarizeBehavior(records, summaryDayStart)
	want := "Behavior: 2 records today, 2 in the last 7 days. Crying today: 1. Behavior today: 1.\n" +
		"- 10:00 Crying (intensity 4): cried before the nap\n" +
		"- 16:00 Behavior: smiled a lot"
	if got != want {
		t.Errorf("summarizeBehavior() = %q, want %q", got, want)
	}
}

func TestBehaviorDetailTruncatesDescription(t *testing.T) {
	rec := sheets.BehaviorRecord{
		Timestamp:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Category:    "Other",
		Description: strings.Repeat("x", 70),
	}

	got := behaviorDetail(rec)
	want := "10:00 Other: " + strings.Repeat("x", 60) + "..."
	if got != want {
		t.Errorf("behaviorDetail() = %q, want %q", got, want)
	}
}

func TestSummaryDetailLinesCapped(t *testing.T) {
	var records []sheets.BehaviorRecord
	for i := 0; i < 5; i++ {
		records = append(records, sheets.BehaviorRecord{
			Timestamp:   time.Date(2025, 6, 1, 8+i, 0, 0, 0, time.UTC),
			Category:    "Other",
			Description: "entry",
		})
	}

	got := summarizeBehavior(records, summaryDayStart)
	if n := strings.Count(got, "\n- "); n != maxDetailLines {
		t.Errorf("summary has %d detail lines, want %d:\n%s", n, maxDetailLines, got)
	}
	if !strings.HasPrefix(got, "Behavior: 5 records today, 5 in the last 7 days.") {
		t.Errorf("summary header counts all records:\n%s", got)
	}
}
