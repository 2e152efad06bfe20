package qa

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/edgard/nanabot/internal/sheets"
)

func reportFixtureStore() *stubStore {
	return &stubStore{
		sleeps: []sheets.SleepRecord{
			{
				Timestamp:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
				Start:       "07:30",
				End:         "09:00",
				DurationMin: intPtr(90),
				Kind:        "sleep",
			},
			{
				Timestamp:   time.Date(2025, 5, 28, 14, 0, 0, 0, time.UTC),
				DurationMin: intPtr(45),
				Kind:        "nap",
			},
		},
		foods: []sheets.FoodRecord{
			{
				Timestamp: time.Date(2025, 6, 1, 8, 15, 0, 0, time.UTC),
				Item:      "formula",
				QtyValue:  floatPtr(120),
				QtyUnit:   "ml",
				Method:    "bottle",
			},
			{
				Timestamp: time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC),
				Item:      "banana",
				QtyValue:  floatPtr(3),
				QtyUnit:   "teaspoon",
			},
		},
		behaviors: []sheets.BehaviorRecord{
			{
				Timestamp:   time.Date(2025, 5, 29, 16, 40, 0, 0, time.UTC),
				Category:    "Crying",
				Intensity:   intPtr(3),
				Description: "cried after bath",
			},
		},
	}
}

func TestDailySummary(t *testing.T) {
	svc := newTestService(t, reportFixtureStore(), &stubAI{})

	got, err := svc.DailySummary(context.Background(), qaTestNow)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}

	if !strings.HasPrefix(got, "📅 Log for Sunday, 01 Jun") {
		t.Errorf("daily summary header wrong:\n%s", got)
	}
	// Only the records from 1 June belong in the daily report.
	if !strings.Contains(got, "😴 Sleep: 1 sessions, 90 min recorded") {
		t.Errorf("daily summary missing sleep aggregate:\n%s", got)
	}
	if !strings.Contains(got, "07:30-09:00") {
		t.Errorf("daily summary missing sleep detail:\n%s", got)
	}
	if !strings.Contains(got, "🍼 Food: 1 feedings, 120 ml drunk") {
		t.Errorf("daily summary missing food aggregate:\n%s", got)
	}
	if strings.Contains(got, "banana") {
		t.Errorf("daily summary includes a record from another day:\n%s", got)
	}
	if strings.Contains(got, "📝 Behavior") {
		t.Errorf("daily summary includes a behavior section with no records today:\n%s", got)
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	svc := newTestService(t, &stubStore{}, &stubAI{})

	got, err := svc.DailySummary(context.Background(), qaTestNow)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if !strings.Contains(got, "Nothing logged yet") {
		t.Errorf("empty daily summary = %q, want the nothing-logged notice", got)
	}
}

func TestDailySummaryZeroRefUsesNow(t *testing.T) {
	svc := newTestService(t, reportFixtureStore(), &stubAI{})

	got, err := svc.DailySummary(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if !strings.HasPrefix(got, "📅 Log for Sunday, 01 Jun") {
		t.Errorf("zero ref should report the injected now:\n%s", got)
	}
}

func TestDailySummaryDetailLinesCapped(t *testing.T) {
	store := &stubStore{}
	for i := 0; i < maxReportLines+3; i++ {
		store.foods = append(store.foods, sheets.FoodRecord{
			Timestamp: time.Date(2025, 6, 1, 8, i, 0, 0, time.UTC),
			Item:      "formula",
		})
	}
	svc := newTestService(t, store, &stubAI{})

	got, err := svc.DailySummary(context.Background(), qaTestNow)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if n := strings.Count(got, "•"); n != maxReportLines {
		t.Errorf("daily summary has %d detail lines, want %d:\n%s", n, maxReportLines, got)
	}
	if !strings.Contains(got, "… and 3 more") {
		t.Errorf("daily summary missing overflow notice:\n%s", got)
	}
}

func TestWeeklySummary(t *testing.T) {
	svc := newTestService(t, reportFixtureStore(), &stubAI{})

	got, err := svc.WeeklySummary(context.Background(), qaTestNow)
	if err != nil {
		t.Fatalf("WeeklySummary() error = %v", err)
	}

	if !strings.HasPrefix(got, "📈 Last 7 days, 26 May to 01 Jun") {
		t.Errorf("weekly summary header wrong:\n%s", got)
	}
	if !strings.Contains(got, "😴 Sleep: 2 sessions, 135 min recorded (avg 67 min/session)") {
		t.Errorf("weekly summary sleep aggregate wrong:\n%s", got)
	}
	if !strings.Contains(got, "🍼 Food: 2 feedings, 120 ml total") {
		t.Errorf("weekly summary food aggregate wrong:\n%s", got)
	}
	if !strings.Contains(got, "📝 Behavior: 1 records (Crying: 1)") {
		t.Errorf("weekly summary behavior aggregate wrong:\n%s", got)
	}

	// Per-day breakdown covers all seven days with the right counts.
	if n := strings.Count(got, "  • "); n != 7 {
		t.Errorf("weekly summary has %d day lines, want 7:\n%s", n, got)
	}
	if !strings.Contains(got, "Sun 01 Jun: 2 records") {
		t.Errorf("weekly summary day count wrong for 01 Jun:\n%s", got)
	}
	if !strings.Contains(got, "Thu 29 May: 1 records") {
		t.Errorf("weekly summary day count wrong for 29 May:\n%s", got)
	}
	if !strings.Contains(got, "Tue 27 May: 0 records") {
		t.Errorf("weekly summary day count wrong for an empty day:\n%s", got)
	}
}

func TestWeeklySummaryEmpty(t *testing.T) {
	svc := newTestService(t, &stubStore{}, &stubAI{})

	got, err := svc.WeeklySummary(context.Background(), qaTestNow)
	if err != nil {
		t.Fatalf("WeeklySummary() error = %v", err)
	}
	if !strings.Contains(got, "Nothing logged this week yet") {
		t.Errorf("empty weekly summary = %q, want the nothing-logged notice", got)
	}
}
