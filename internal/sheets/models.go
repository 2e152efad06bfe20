// Package sheets defines the care-record model and the spreadsheet-backed
// store that persists it. Records are appended as rows to fixed-schema
// worksheets, either in a Google Sheets spreadsheet or in a local xlsx
// workbook.
package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is a classified message category.
type Category string

const (
	CategoryFood     Category = "food"
	CategorySleep    Category = "sleep"
	CategoryCry      Category = "cry"
	CategoryBehavior Category = "behavior"
	CategoryQuestion Category = "question"
	CategoryOther    Category = "other"
)

// ParseCategory maps a free-form label to a known category. Unknown labels
// map to CategoryOther with ok=false.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryFood, CategorySleep, CategoryCry, CategoryBehavior, CategoryQuestion, CategoryOther:
		return c, true
	}
	return CategoryOther, false
}

// ParsedMessage is the structured reading of one caregiver message. Pointer
// fields distinguish "absent" from zero; absent numeric fields produce empty
// spreadsheet cells.
type ParsedMessage struct {
	Category    Category
	Confidence  float64
	Item        string
	QtyValue    *float64
	QtyUnit     string
	Method      string
	StartTime   string
	EndTime     string
	DurationMin *int
	Intensity   *int
	Description string
	Notes       string
}

// Worksheet names.
const (
	SheetFood     = "Food"
	SheetSleep    = "Sleep"
	SheetBehavior = "Behavior"
	SheetQA       = "Q&A_Log"
	SheetUsers    = "Users"
)

var sheetHeaders = map[string][]string{
	SheetFood:     {"timestamp", "user", "category", "item", "qty_value", "qty_unit", "method", "source", "notes"},
	SheetSleep:    {"timestamp", "user", "start", "end", "duration_min", "kind", "notes"},
	SheetBehavior: {"timestamp", "user", "category", "intensity_1_5", "description"},
	SheetQA:       {"timestamp", "user", "question", "answer", "backed_by_data"},
	SheetUsers:    {"chat_id", "name", "authorized", "is_admin"},
}

// SheetNames lists every worksheet in workbook order.
func SheetNames() []string {
	return []string{SheetFood, SheetSleep, SheetBehavior, SheetQA, SheetUsers}
}

// Headers returns the fixed header row for a worksheet, or nil for an
// unknown name.
func Headers(sheet string) []string {
	return sheetHeaders[sheet]
}

// Record is one appendable spreadsheet row. Confirmation returns the
// user-facing text acknowledging the write.
type Record interface {
	Sheet() string
	Row() []string
	Confirmation() string
}

// FoodRecord is one row of the Food worksheet.
type FoodRecord struct {
	Timestamp time.Time
	User      string
	Category  string
	Item      string
	QtyValue  *float64
	QtyUnit   string
	Method    string
	Source    string
	Notes     string
}

func (r *FoodRecord) Sheet() string { return SheetFood }

func (r *FoodRecord) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.User,
		r.Category,
		r.Item,
		formatFloatCell(r.QtyValue),
		r.QtyUnit,
		r.Method,
		r.Source,
		r.Notes,
	}
}

func (r *FoodRecord) Confirmation() string {
	item := r.Item
	if item == "" {
		item = "not identified"
	}

	var b strings.Builder
	b.WriteString("🍼 Food logged:\n📦 ")
	b.WriteString(item)
	if r.QtyValue != nil {
		qty := formatFloatCell(r.QtyValue)
		if r.QtyUnit != "" {
			qty += " " + r.QtyUnit
		}
		fmt.Fprintf(&b, " (%s)", qty)
	}
	if r.Method != "" {
		b.WriteString(" - " + r.Method)
	}
	b.WriteString("\n📍 Saved to the Food sheet")
	return b.String()
}

// SleepRecord is one row of the Sleep worksheet. Start and End keep the
// clock strings as reported; DurationMin is only set when both parsed.
type SleepRecord struct {
	Timestamp   time.Time
	User        string
	Start       string
	End         string
	DurationMin *int
	Kind        string
	Notes       string
}

func (r *SleepRecord) Sheet() string { return SheetSleep }

func (r *SleepRecord) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.User,
		r.Start,
		r.End,
		formatIntCell(r.DurationMin),
		r.Kind,
		r.Notes,
	}
}

func (r *SleepRecord) Confirmation() string {
	var b strings.Builder
	b.WriteString("😴 Sleep logged")
	switch {
	case r.Start != "" && r.End != "":
		fmt.Fprintf(&b, ": %s-%s", r.Start, r.End)
	case r.DurationMin != nil:
		fmt.Fprintf(&b, " (%d min)", *r.DurationMin)
	}
	b.WriteString("\n📍 Saved to the Sleep sheet")
	return b.String()
}

// BehaviorRecord is one row of the Behavior worksheet. Category holds the
// display label, not the raw classifier category.
type BehaviorRecord struct {
	Timestamp   time.Time
	User        string
	Category    string
	Intensity   *int
	Description string
}

func (r *BehaviorRecord) Sheet() string { return SheetBehavior }

func (r *BehaviorRecord) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.User,
		r.Category,
		formatIntCell(r.Intensity),
		r.Description,
	}
}

func (r *BehaviorRecord) Confirmation() string {
	return fmt.Sprintf("📝 %s logged\n📍 Saved to the Behavior sheet", r.Category)
}

// QARecord is one row of the Q&A_Log worksheet.
type QARecord struct {
	Timestamp    time.Time
	User         string
	Question     string
	Answer       string
	BackedByData bool
}

func (r *QARecord) Sheet() string { return SheetQA }

func (r *QARecord) Row() []string {
	backed := "FALSE"
	if r.BackedByData {
		backed = "TRUE"
	}
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.User,
		r.Question,
		r.Answer,
		backed,
	}
}

func (r *QARecord) Confirmation() string { return r.Answer }

// User is one row of the Users worksheet.
type User struct {
	ChatID     string
	Name       string
	Authorized bool
	IsAdmin    bool
}

// DisplayName returns the configured name, falling back to a short handle
// derived from the chat id.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	id := u.ChatID
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "user" + id
}

func formatFloatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
