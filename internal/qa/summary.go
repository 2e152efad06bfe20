package qa

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/nanabot/internal/sheets"
)

// maxDetailLines bounds the per-topic detail lines in a summary, keeping
// both the AI context and the fallback answer short.
const maxDetailLines = 3

func summarizeSleep(records []sheets.SleepRecord, dayStart time.Time) string {
	var todayCount, todayMinutes int
	var details []string
	for _, r := range records {
		if r.Timestamp.Before(dayStart) {
			continue
		}
		todayCount++
		if r.DurationMin != nil {
			todayMinutes += *r.DurationMin
		}
		if len(details) < maxDetailLines {
			details = append(details, sleepDetail(r))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sleep: %d records today, %d in the last 7 days.", todayCount, len(records))
	if todayMinutes > 0 {
		fmt.Fprintf(&b, " %d minutes slept today.", todayMinutes)
	}
	for _, d := range details {
		b.WriteString("\n- " + d)
	}
	return b.String()
}

func sleepDetail(r sheets.SleepRecord) string {
	var b strings.Builder
	b.WriteString(r.Timestamp.Format("15:04"))
	if r.Start != "" && r.End != "" {
		fmt.Fprintf(&b, " %s-%s", r.Start, r.End)
	}
	if r.Kind != "" {
		b.WriteString(" " + r.Kind)
	}
	if r.DurationMin != nil {
		fmt.Fprintf(&b, " (%d min)", *r.DurationMin)
	}
	return b.String()
}

func summarizeFood(records []sheets.FoodRecord, dayStart time.Time) string {
	var todayCount int
	var todayML float64
	var details []string
	for _, r := range records {
		if r.Timestamp.Before(dayStart) {
			continue
		}
		todayCount++
		if r.QtyValue != nil && r.QtyUnit == "ml" {
			todayML += *r.QtyValue
		}
		if len(details) < maxDetailLines {
			details = append(details, foodDetail(r))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Food: %d records today, %d in the last 7 days.", todayCount, len(records))
	if todayML > 0 {
		fmt.Fprintf(&b, " %s ml drunk today.", strconv.FormatFloat(todayML, 'f', -1, 64))
	}
	for _, d := range details {
		b.WriteString("\n- " + d)
	}
	return b.String()
}

func foodDetail(r sheets.FoodRecord) string {
	var b strings.Builder
	b.WriteString(r.Timestamp.Format("15:04"))
	if r.Item != "" {
		b.WriteString(" " + r.Item)
	}
	if r.QtyValue != nil {
		fmt.Fprintf(&b, ", %s", strconv.FormatFloat(*r.QtyValue, 'f', -1, 64))
		if r.QtyUnit != "" {
			b.WriteString(" " + r.QtyUnit)
		}
	}
	if r.Method != "" {
		fmt.Fprintf(&b, " (%s)", r.Method)
	}
	return b.String()
}

func summarizeBehavior(records []sheets.BehaviorRecord, dayStart time.Time) string {
	todayCount := 0
	byLabel := make(map[string]int)
	var details []string
	for _, r := range records {
		if r.Timestamp.Before(dayStart) {
			continue
		}
		todayCount++
		if r.Category != "" {
			byLabel[r.Category]++
		}
		if len(details) < maxDetailLines {
			details = append(details, behaviorDetail(r))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Behavior: %d records today, %d in the last 7 days.", todayCount, len(records))
	for _, label := range []string{"Crying", "Behavior", "Other"} {
		if n := byLabel[label]; n > 0 {
			fmt.Fprintf(&b, " %s today: %d.", label, n)
		}
	}
	for _, d := range details {
		b.WriteString("\n- " + d)
	}
	return b.String()
}

func behaviorDetail(r sheets.BehaviorRecord) string {
	var b strings.Builder
	b.WriteString(r.Timestamp.Format("15:04"))
	if r.Category != "" {
		b.WriteString(" " + r.Category)
	}
	if r.Intensity != nil {
		fmt.Fprintf(&b, " (intensity %d)", *r.Intensity)
	}
	if r.Description != "" {
		desc := r.Description
		if runes := []rune(desc); len(runes) > 60 {
			desc = string(runes[:60]) + "..."
		}
		b.WriteString(": " + desc)
	}
	return b.String()
}
