package sheets

import (
	"strings"
	"time"
)

// napThresholdMin separates a nap from a full sleep session.
const napThresholdMin = 120

var behaviorLabels = map[Category]string{
	CategoryCry:      "Crying",
	CategoryBehavior: "Behavior",
	CategoryOther:    "Other",
}

// BuildRecord maps a finalized classification to the record it persists.
// It is pure: text is the original message, user the display name written
// into the row, and now the row timestamp. Questions produce no record and
// return ok=false; the caller routes them to question answering instead.
// Any category outside the known set files as a behavior row labeled Other.
func BuildRecord(pm ParsedMessage, text, user string, now time.Time) (Record, bool) {
	switch pm.Category {
	case CategoryQuestion:
		return nil, false
	case CategoryFood:
		return buildFood(pm, text, user, now), true
	case CategorySleep:
		return buildSleep(pm, text, user, now), true
	default:
		return buildBehavior(pm, text, user, now), true
	}
}

func buildFood(pm ParsedMessage, text, user string, now time.Time) *FoodRecord {
	category := "liquid"
	if strings.Contains(pm.Method, "solid") {
		category = "solid"
	}

	source := ""
	switch pm.Method {
	case "solids", "bottle", "breast":
		source = pm.Method
	}

	notes := pm.Notes
	if notes == "" {
		notes = text
	}

	return &FoodRecord{
		Timestamp: now,
		User:      user,
		Category:  category,
		Item:      pm.Item,
		QtyValue:  pm.QtyValue,
		QtyUnit:   pm.QtyUnit,
		Method:    pm.Method,
		Source:    source,
		Notes:     notes,
	}
}

func buildSleep(pm ParsedMessage, text, user string, now time.Time) *SleepRecord {
	var duration *int
	if start, ok := ParseClockMinutes(pm.StartTime); ok {
		if end, ok := ParseClockMinutes(pm.EndTime); ok {
			d := end - start
			if d < 0 {
				// Session crossed midnight.
				d += 24 * 60
			}
			if d > 0 {
				duration = &d
			}
		}
	}

	kind := "sleep"
	if duration != nil && *duration < napThresholdMin {
		kind = "nap"
	}

	notes := pm.Notes
	if notes == "" {
		notes = text
	}

	return &SleepRecord{
		Timestamp:   now,
		User:        user,
		Start:       pm.StartTime,
		End:         pm.EndTime,
		DurationMin: duration,
		Kind:        kind,
		Notes:       notes,
	}
}

func buildBehavior(pm ParsedMessage, text, user string, now time.Time) *BehaviorRecord {
	label, ok := behaviorLabels[pm.Category]
	if !ok {
		label = behaviorLabels[CategoryOther]
	}

	description := pm.Description
	if description == "" {
		description = text
	}

	return &BehaviorRecord{
		Timestamp:   now,
		User:        user,
		Category:    label,
		Intensity:   pm.Intensity,
		Description: description,
	}
}
