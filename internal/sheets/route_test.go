package sheets

import (
	"reflect"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestBuildRecordDispatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		category  Category
		wantOK    bool
		wantSheet string
	}{
		{name: "food", category: CategoryFood, wantOK: true, wantSheet: SheetFood},
		{name: "sleep", category: CategorySleep, wantOK: true, wantSheet: SheetSleep},
		{name: "cry", category: CategoryCry, wantOK: true, wantSheet: SheetBehavior},
		{name: "behavior", category: CategoryBehavior, wantOK: true, wantSheet: SheetBehavior},
		{name: "other", category: CategoryOther, wantOK: true, wantSheet: SheetBehavior},
		{name: "question goes to answering", category: CategoryQuestion, wantOK: false},
		{name: "unrecognized label treated as other", category: Category("gibberish"), wantOK: true, wantSheet: SheetBehavior},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, ok := BuildRecord(ParsedMessage{Category: tc.category}, "some text", "Dana", now)
			if ok != tc.wantOK {
				t.Fatalf("BuildRecord ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if rec.Sheet() != tc.wantSheet {
				t.Errorf("Sheet() = %q, want %q", rec.Sheet(), tc.wantSheet)
			}
		})
	}
}

func TestBuildRecordFood(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		method       string
		wantCategory string
		wantSource   string
	}{
		{name: "bottle is liquid", method: "bottle", wantCategory: "liquid", wantSource: "bottle"},
		{name: "breast is liquid", method: "breast", wantCategory: "liquid", wantSource: "breast"},
		{name: "solids is solid", method: "solids", wantCategory: "solid", wantSource: "solids"},
		{name: "spoon is liquid with no source", method: "spoon", wantCategory: "liquid", wantSource: ""},
		{name: "empty method", method: "", wantCategory: "liquid", wantSource: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pm := ParsedMessage{Category: CategoryFood, Method: tc.method}
			rec, ok := BuildRecord(pm, "ate something", "Dana", now)
			if !ok {
				t.Fatal("BuildRecord returned ok=false for food")
			}

			food, isFood := rec.(*FoodRecord)
			if !isFood {
				t.Fatalf("BuildRecord returned %T, want *FoodRecord", rec)
			}
			if food.Category != tc.wantCategory {
				t.Errorf("Category = %q, want %q", food.Category, tc.wantCategory)
			}
			if food.Source != tc.wantSource {
				t.Errorf("Source = %q, want %q", food.Source, tc.wantSource)
			}
		})
	}
}

func TestBuildRecordFoodRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	pm := ParsedMessage{
		Category: CategoryFood,
		Item:     "formula",
		QtyValue: floatPtr(120),
		QtyUnit:  "ml",
		Method:   "bottle",
	}

	rec, _ := BuildRecord(pm, "drank 120ml formula from a bottle", "Dana", now)
	got := rec.Row()
	want := []string{
		"2025-06-01 09:30", "Dana", "liquid", "formula",
		"120", "ml", "bottle", "bottle",
		"drank 120ml formula from a bottle",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}

func TestBuildRecordFoodNotesKept(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	pm := ParsedMessage{Category: CategoryFood, Notes: "liked it a lot"}

	rec, _ := BuildRecord(pm, "original message", "Dana", now)
	food := rec.(*FoodRecord)
	if food.Notes != "liked it a lot" {
		t.Errorf("Notes = %q, want the parsed notes kept", food.Notes)
	}
}

func TestBuildRecordSleepDuration(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		start, end   string
		wantDuration *int
		wantKind     string
	}{
		{name: "afternoon nap", start: "13:10", end: "14:30", wantDuration: intPtr(80), wantKind: "nap"},
		{name: "crossing midnight", start: "23:30", end: "00:15", wantDuration: intPtr(45), wantKind: "nap"},
		{name: "full night", start: "19:30", end: "06:45", wantDuration: intPtr(675), wantKind: "sleep"},
		{name: "two hours is a sleep", start: "12:00", end: "14:00", wantDuration: intPtr(120), wantKind: "sleep"},
		{name: "just under two hours", start: "12:00", end: "13:59", wantDuration: intPtr(119), wantKind: "nap"},
		{name: "unparsable start", start: "around noon", end: "14:30", wantDuration: nil, wantKind: "sleep"},
		{name: "missing end", start: "13:10", end: "", wantDuration: nil, wantKind: "sleep"},
		{name: "equal times", start: "13:10", end: "13:10", wantDuration: nil, wantKind: "sleep"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pm := ParsedMessage{Category: CategorySleep, StartTime: tc.start, EndTime: tc.end}
			rec, _ := BuildRecord(pm, "slept", "Dana", now)
			sleep := rec.(*SleepRecord)

			switch {
			case tc.wantDuration == nil && sleep.DurationMin != nil:
				t.Errorf("DurationMin = %d, want unset", *sleep.DurationMin)
			case tc.wantDuration != nil && sleep.DurationMin == nil:
				t.Errorf("DurationMin unset, want %d", *tc.wantDuration)
			case tc.wantDuration != nil && *sleep.DurationMin != *tc.wantDuration:
				t.Errorf("DurationMin = %d, want %d", *sleep.DurationMin, *tc.wantDuration)
			}
			if sleep.Kind != tc.wantKind {
				t.Errorf("Kind = %q, want %q", sleep.Kind, tc.wantKind)
			}
			// Raw clock strings are kept as reported.
			if sleep.Start != tc.start || sleep.End != tc.end {
				t.Errorf("Start/End = %q/%q, want %q/%q", sleep.Start, sleep.End, tc.start, tc.end)
			}
		})
	}
}

func TestBuildRecordSleepRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	pm := ParsedMessage{Category: CategorySleep, StartTime: "13:10", EndTime: "14:30"}

	rec, _ := BuildRecord(pm, "napped nicely", "Dana", now)
	got := rec.Row()
	want := []string{"2025-06-01 09:30", "Dana", "13:10", "14:30", "80", "nap", "napped nicely"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}

func TestBuildRecordBehaviorLabels(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		category  Category
		wantLabel string
	}{
		{name: "cry", category: CategoryCry, wantLabel: "Crying"},
		{name: "behavior", category: CategoryBehavior, wantLabel: "Behavior"},
		{name: "other", category: CategoryOther, wantLabel: "Other"},
		{name: "unknown defaults to other", category: Category("junk"), wantLabel: "Other"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pm := ParsedMessage{Category: tc.category, Intensity: intPtr(3)}
			rec, _ := BuildRecord(pm, "cried after the bath", "Dana", now)
			behavior := rec.(*BehaviorRecord)

			if behavior.Category != tc.wantLabel {
				t.Errorf("Category = %q, want %q", behavior.Category, tc.wantLabel)
			}
			if behavior.Intensity == nil || *behavior.Intensity != 3 {
				t.Error("Intensity not carried through")
			}
			if behavior.Description != "cried after the bath" {
				t.Errorf("Description = %q, want the original text", behavior.Description)
			}
		})
	}
}

func TestQARecordRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		backed     bool
		wantBacked string
	}{
		{name: "backed by data", backed: true, wantBacked: "TRUE"},
		{name: "not backed", backed: false, wantBacked: "FALSE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &QARecord{
				Timestamp:    now,
				User:         "Dana",
				Question:     "how long did she sleep today?",
				Answer:       "about three hours",
				BackedByData: tc.backed,
			}
			row := rec.Row()
			if row[4] != tc.wantBacked {
				t.Errorf("backed_by_data cell = %q, want %q", row[4], tc.wantBacked)
			}
		})
	}
}

func TestFoodConfirmation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		pm   ParsedMessage
		want string
	}{
		{
			name: "full details",
			pm:   ParsedMessage{Category: CategoryFood, Item: "formula", QtyValue: floatPtr(120), QtyUnit: "ml", Method: "bottle"},
			want: "🍼 Food logged:\n📦 formula (120 ml) - bottle\n📍 Saved to the Food sheet",
		},
		{
			name: "nothing identified",
			pm:   ParsedMessage{Category: CategoryFood},
			want: "🍼 Food logged:\n📦 not identified\n📍 Saved to the Food sheet",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, _ := BuildRecord(tc.pm, "text", "Dana", now)
			if got := rec.Confirmation(); got != tc.want {
				t.Errorf("Confirmation() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{name: "plain", input: "food", want: CategoryFood, wantOK: true},
		{name: "mixed case", input: "Sleep", want: CategorySleep, wantOK: true},
		{name: "padded", input: "  cry ", want: CategoryCry, wantOK: true},
		{name: "unknown", input: "nonsense", want: CategoryOther, wantOK: false},
		{name: "empty", input: "", want: CategoryOther, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseCategory(tc.input)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseCategory(%q) = %q, %v, want %q, %v", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "configured name", user: User{ChatID: "123456789", Name: "Dana"}, want: "Dana"},
		{name: "fallback from id", user: User{ChatID: "123456789"}, want: "user6789"},
		{name: "short id", user: User{ChatID: "42"}, want: "user42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}
