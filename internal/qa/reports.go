package qa

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/nanabot/internal/sheets"
)

// maxReportLines bounds the per-topic detail lines in the daily report. A
// newborn's day rarely exceeds it; the full data stays in the spreadsheet.
const maxReportLines = 10

// DailySummary renders every record logged on the day containing ref as a
// caregiver-facing report. The zero time means today.
func (s *Service) DailySummary(ctx context.Context, ref time.Time) (string, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	ref = ref.In(s.loc)
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	sleeps, err := s.store.SleepSince(ctx, dayStart)
	if err != nil {
		return "", err
	}
	foods, err := s.store.FoodSince(ctx, dayStart)
	if err != nil {
		return "", err
	}
	behaviors, err := s.store.BehaviorSince(ctx, dayStart)
	if err != nil {
		return "", err
	}

	sleeps = sleepsBefore(sleeps, dayEnd)
	foods = foodsBefore(foods, dayEnd)
	behaviors = behaviorsBefore(behaviors, dayEnd)

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Log for %s\n", dayStart.Format("Monday, 02 Jan"))

	if len(sleeps) == 0 && len(foods) == 0 && len(behaviors) == 0 {
		b.WriteString("\nNothing logged yet. Just write what happened!")
		return b.String(), nil
	}

	if len(sleeps) > 0 {
		var minutes int
		for _, r := range sleeps {
			if r.DurationMin != nil {
				minutes += *r.DurationMin
			}
		}
		fmt.Fprintf(&b, "\n😴 Sleep: %d sessions", len(sleeps))
		if minutes > 0 {
			fmt.Fprintf(&b, ", %d min recorded", minutes)
		}
		b.WriteString("\n")
		for i, r := range sleeps {
			if i == maxReportLines {
				fmt.Fprintf(&b, "  … and %d more\n", len(sleeps)-maxReportLines)
				break
			}
			b.WriteString("  • " + sleepDetail(r) + "\n")
		}
	}

	if len(foods) > 0 {
		var ml float64
		for _, r := range foods {
			if r.QtyValue != nil && r.QtyUnit == "ml" {
				ml += *r.QtyValue
			}
		}
		fmt.Fprintf(&b, "\n🍼 Food: %d feedings", len(foods))
		if ml > 0 {
			fmt.Fprintf(&b, ", %s ml drunk", strconv.FormatFloat(ml, 'f', -1, 64))
		}
		b.WriteString("\n")
		for i, r := range foods {
			if i == maxReportLines {
				fmt.Fprintf(&b, "  … and %d more\n", len(foods)-maxReportLines)
				break
			}
			b.WriteString("  • " + foodDetail(r) + "\n")
		}
	}

	if len(behaviors) > 0 {
		fmt.Fprintf(&b, "\n📝 Behavior: %d records\n", len(behaviors))
		for i, r := range behaviors {
			if i == maxReportLines {
				fmt.Fprintf(&b, "  … and %d more\n", len(behaviors)-maxReportLines)
				break
			}
			b.WriteString("  • " + behaviorDetail(r) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// WeeklySummary renders a rollup of the 7 days ending on the day containing
// ref, aggregate totals first, then a per-day record count.
func (s *Service) WeeklySummary(ctx context.Context, ref time.Time) (string, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	ref = ref.In(s.loc)
	dayEnd := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
	weekStart := dayEnd.AddDate(0, 0, -7)

	sleeps, err := s.store.SleepSince(ctx, weekStart)
	if err != nil {
		return "", err
	}
	foods, err := s.store.FoodSince(ctx, weekStart)
	if err != nil {
		return "", err
	}
	behaviors, err := s.store.BehaviorSince(ctx, weekStart)
	if err != nil {
		return "", err
	}

	sleeps = sleepsBefore(sleeps, dayEnd)
	foods = foodsBefore(foods, dayEnd)
	behaviors = behaviorsBefore(behaviors, dayEnd)

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Last 7 days, %s to %s\n",
		weekStart.Format("02 Jan"), dayEnd.AddDate(0, 0, -1).Format("02 Jan"))

	if len(sleeps) == 0 && len(foods) == 0 && len(behaviors) == 0 {
		b.WriteString("\nNothing logged this week yet.")
		return b.String(), nil
	}

	if len(sleeps) > 0 {
		var minutes, withDuration int
		for _, r := range sleeps {
			if r.DurationMin != nil {
				minutes += *r.DurationMin
				withDuration++
			}
		}
		fmt.Fprintf(&b, "\n😴 Sleep: %d sessions", len(sleeps))
		if withDuration > 0 {
			fmt.Fprintf(&b, ", %d min recorded (avg %d min/session)", minutes, minutes/withDuration)
		}
	}

	if len(foods) > 0 {
		var ml float64
		for _, r := range foods {
			if r.QtyValue != nil && r.QtyUnit == "ml" {
				ml += *r.QtyValue
			}
		}
		fmt.Fprintf(&b, "\n🍼 Food: %d feedings", len(foods))
		if ml > 0 {
			fmt.Fprintf(&b, ", %s ml total", strconv.FormatFloat(ml, 'f', -1, 64))
		}
	}

	if len(behaviors) > 0 {
		byLabel := make(map[string]int)
		for _, r := range behaviors {
			if r.Category != "" {
				byLabel[r.Category]++
			}
		}
		fmt.Fprintf(&b, "\n📝 Behavior: %d records", len(behaviors))
		var parts []string
		for _, label := range []string{"Crying", "Behavior", "Other"} {
			if n := byLabel[label]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", label, n))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
		}
	}

	b.WriteString("\n\nBy day:\n")
	for day := weekStart; day.Before(dayEnd); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		count := 0
		for _, r := range sleeps {
			if inRange(r.Timestamp, day, next) {
				count++
			}
		}
		for _, r := range foods {
			if inRange(r.Timestamp, day, next) {
				count++
			}
		}
		for _, r := range behaviors {
			if inRange(r.Timestamp, day, next) {
				count++
			}
		}
		fmt.Fprintf(&b, "  • %s: %d records\n", day.Format("Mon 02 Jan"), count)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func inRange(t, from, until time.Time) bool {
	return !t.Before(from) && t.Before(until)
}

func sleepsBefore(records []sheets.SleepRecord, until time.Time) []sheets.SleepRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Timestamp.Before(until) {
			kept = append(kept, r)
		}
	}
	return kept
}

func foodsBefore(records []sheets.FoodRecord, until time.Time) []sheets.FoodRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Timestamp.Before(until) {
			kept = append(kept, r)
		}
	}
	return kept
}

func behaviorsBefore(records []sheets.BehaviorRecord, until time.Time) []sheets.BehaviorRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Timestamp.Before(until) {
			kept = append(kept, r)
		}
	}
	return kept
}
