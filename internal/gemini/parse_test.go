package gemini

import (
	"testing"

	"github.com/edgard/nanabot/internal/sheets"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		// Clean responses.
		{name: "bare object", input: `{"category":"food"}`, want: `{"category":"food"}`, wantOK: true},
		{name: "surrounding whitespace", input: "  \n{\"a\":1}\n", want: `{"a":1}`, wantOK: true},

		// Responses wrapped in prose or fences.
		{name: "markdown fence", input: "```json\n{\"category\":\"sleep\"}\n```", want: `{"category":"sleep"}`, wantOK: true},
		{name: "leading prose", input: `Here is the result: {"category":"cry"} hope it helps`, want: `{"category":"cry"}`, wantOK: true},
		{name: "quoted prose before object", input: `The "result" is {"a":1}`, want: `{"a":1}`, wantOK: true},

		// Structure inside the object.
		{name: "nested object", input: `{"a":{"b":2},"c":3}`, want: `{"a":{"b":2},"c":3}`, wantOK: true},
		{name: "brace inside string", input: `{"notes":"used {weird} wording"}`, want: `{"notes":"used {weird} wording"}`, wantOK: true},
		{name: "escaped quote inside string", input: `{"notes":"she said \"no\" loudly"}`, want: `{"notes":"she said \"no\" loudly"}`, wantOK: true},
		{name: "closing brace inside string", input: `{"notes":"}"}`, want: `{"notes":"}"}`, wantOK: true},

		// Only the first object is taken.
		{name: "two objects", input: `{"a":1} {"b":2}`, want: `{"a":1}`, wantOK: true},

		// Nothing extractable.
		{name: "no object", input: "sorry, I cannot do that", wantOK: false},
		{name: "unterminated object", input: `{"a":1`, wantOK: false},
		{name: "empty input", input: "", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractJSONObject(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ExtractJSONObject(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseClassificationCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, pm sheets.ParsedMessage)
	}{
		{
			name:  "valid full response",
			input: `{"category":"food","confidence":0.9,"item":"formula","qty_value":120,"qty_unit":"ml","method":"bottle"}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Category != sheets.CategoryFood {
					t.Errorf("Category = %q, want food", pm.Category)
				}
				if pm.Confidence != 0.9 {
					t.Errorf("Confidence = %v, want 0.9", pm.Confidence)
				}
				if pm.QtyValue == nil || *pm.QtyValue != 120 {
					t.Error("QtyValue not parsed")
				}
			},
		},
		{
			name:  "unknown category becomes other",
			input: `{"category":"snack","confidence":0.8}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Category != sheets.CategoryOther {
					t.Errorf("Category = %q, want other", pm.Category)
				}
			},
		},
		{
			name:  "confidence above range becomes default",
			input: `{"category":"sleep","confidence":1.4}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Confidence != 0.5 {
					t.Errorf("Confidence = %v, want 0.5", pm.Confidence)
				}
			},
		},
		{
			name:  "confidence non numeric becomes default",
			input: `{"category":"sleep","confidence":"high"}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Confidence != 0.5 {
					t.Errorf("Confidence = %v, want 0.5", pm.Confidence)
				}
			},
		},
		{
			name:  "confidence as numeric string accepted",
			input: `{"category":"sleep","confidence":"0.75"}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Confidence != 0.75 {
					t.Errorf("Confidence = %v, want 0.75", pm.Confidence)
				}
			},
		},
		{
			name:  "quantity as numeric string accepted",
			input: `{"category":"food","confidence":0.9,"qty_value":"120"}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.QtyValue == nil || *pm.QtyValue != 120 {
					t.Error("QtyValue = nil, want 120")
				}
			},
		},
		{
			name:  "quantity non numeric dropped",
			input: `{"category":"food","confidence":0.9,"qty_value":"a lot"}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.QtyValue != nil {
					t.Errorf("QtyValue = %v, want dropped", *pm.QtyValue)
				}
			},
		},
		{
			name:  "intensity out of range dropped",
			input: `{"category":"cry","confidence":0.9,"intensity_1_5":7}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Intensity != nil {
					t.Errorf("Intensity = %v, want dropped", *pm.Intensity)
				}
			},
		},
		{
			name:  "intensity in range kept",
			input: `{"category":"cry","confidence":0.9,"intensity_1_5":3}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Intensity == nil || *pm.Intensity != 3 {
					t.Error("Intensity = nil, want 3")
				}
			},
		},
		{
			name:  "null fields dropped",
			input: `{"category":"sleep","confidence":0.9,"item":null,"qty_value":null,"duration_min":null}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.Item != "" || pm.QtyValue != nil || pm.DurationMin != nil {
					t.Error("null fields were not dropped")
				}
			},
		},
		{
			name:  "times carried through",
			input: `{"category":"sleep","confidence":0.9,"start_time":"13:10","end_time":"14:30","duration_min":80}`,
			check: func(t *testing.T, pm sheets.ParsedMessage) {
				if pm.StartTime != "13:10" || pm.EndTime != "14:30" {
					t.Errorf("times = %q/%q, want 13:10/14:30", pm.StartTime, pm.EndTime)
				}
				if pm.DurationMin == nil || *pm.DurationMin != 80 {
					t.Error("DurationMin = nil, want 80")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pm, err := ParseClassification(tc.input)
			if err != nil {
				t.Fatalf("ParseClassification: %v", err)
			}
			tc.check(t, pm)
		})
	}
}

func TestParseClassificationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "no json", input: "I could not classify that"},
		{name: "broken json", input: `{"category": food}`},
		{name: "empty", input: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseClassification(tc.input); err == nil {
				t.Errorf("ParseClassification(%q) succeeded, want error", tc.input)
			}
		})
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	pm := Fallback("drank something, not sure what")

	if pm.Category != sheets.CategoryOther {
		t.Errorf("Category = %q, want other", pm.Category)
	}
	if pm.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3", pm.Confidence)
	}
	if pm.Notes != "drank something, not sure what" {
		t.Errorf("Notes = %q, want the original text", pm.Notes)
	}
	if pm.Description != "drank something, not sure what" {
		t.Errorf("Description = %q, want the original text", pm.Description)
	}
}
