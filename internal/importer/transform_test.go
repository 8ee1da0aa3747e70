package importer

import (
	"testing"
	"time"
)

func TestToPgDate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  time.Time
		valid bool
	}{
		{"iso", "2021-05-13", time.Date(2021, 5, 13, 0, 0, 0, 0, time.UTC), true},
		{"day first slash", "13/05/2021", time.Date(2021, 5, 13, 0, 0, 0, 0, time.UTC), true},
		{"month first slash", "05/13/2021", time.Date(2021, 5, 13, 0, 0, 0, 0, time.UTC), true},
		// 2/3 is ambiguous; day-first is tried before month-first.
		{"ambiguous prefers day first", "2/3/2021", time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"day first dash", "13-5-2021", time.Date(2021, 5, 13, 0, 0, 0, 0, time.UTC), true},
		{"padded", "  2021-05-13  ", time.Date(2021, 5, 13, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"none word", "None", time.Time{}, false},
		{"nan word", "NaN", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
		{"wrong order", "2021/05/13", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toPgDate(tt.in)
			if got.Valid != tt.valid {
				t.Fatalf("toPgDate(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			}
			if tt.valid && !got.Time.Equal(tt.want) {
				t.Errorf("toPgDate(%q) = %v, want %v", tt.in, got.Time, tt.want)
			}
		})
	}
}

func TestToPgFloat8(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  float64
		valid bool
	}{
		{"int", "74", 74, true},
		{"decimal", "23.4", 23.4, true},
		{"negative", "-1.5", -1.5, true},
		{"padded", " 80 ", 80, true},
		{"empty", "", 0, false},
		{"null word", "null", 0, false},
		{"na word", "N/A", 0, false},
		{"text", "heavy", 0, false},
		{"nan literal", "NaN", 0, false},
		{"inf literal", "Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toPgFloat8(tt.in)
			if got.Valid != tt.valid {
				t.Fatalf("toPgFloat8(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			}
			if tt.valid && got.Float64 != tt.want {
				t.Errorf("toPgFloat8(%q) = %v, want %v", tt.in, got.Float64, tt.want)
			}
		})
	}
}

func TestToPgText(t *testing.T) {
	if got := toPgText("  female "); !got.Valid || got.String != "female" {
		t.Errorf("toPgText trimmed = %+v, want valid 'female'", got)
	}
	if got := toPgText("   "); got.Valid {
		t.Errorf("toPgText(blank).Valid = true, want false")
	}
	// Null words stay literal text; only whitespace blanks to NULL here.
	if got := toPgText("None"); !got.Valid || got.String != "None" {
		t.Errorf("toPgText(None) = %+v, want valid literal", got)
	}
}

func TestTransformRecord(t *testing.T) {
	row := TransformRecord(map[string]string{
		"PersonID":       "p17",
		"Start date":     "2021-05-13",
		"End date":       "not a date",
		"M-Risk Factors": "diabetes",
		"Gender":         "F",
		"Age":            "74",
		"MNA":            "nan",
		"BMI":            "23.4",
		"Weight":         "",
	})

	if !row.PersonID.Valid || row.PersonID.String != "p17" {
		t.Errorf("PersonID = %+v", row.PersonID)
	}
	if !row.StartDate.Valid {
		t.Errorf("StartDate invalid, want 2021-05-13")
	}
	if row.EndDate.Valid {
		t.Errorf("EndDate valid, want NULL for unparseable date")
	}
	if !row.Age.Valid || row.Age.Float64 != 74 {
		t.Errorf("Age = %+v", row.Age)
	}
	if row.MNA.Valid {
		t.Errorf("MNA valid, want NULL for nan")
	}
	if row.Weight.Valid {
		t.Errorf("Weight valid, want NULL for empty cell")
	}

	vals := row.Values()
	if len(vals) != 9 {
		t.Fatalf("Values() len = %d, want 9", len(vals))
	}
}

func TestTransformRecord_MissingKeys(t *testing.T) {
	// A record with no entries at all coerces to an all-NULL row.
	row := TransformRecord(map[string]string{})
	if row.PersonID.Valid || row.StartDate.Valid || row.Age.Valid {
		t.Errorf("empty record produced non-NULL fields: %+v", row)
	}
}
