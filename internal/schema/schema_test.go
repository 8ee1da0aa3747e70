package schema

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Start date", "startdate"},
		{"Start Date", "startdate"},
		{"start_date", "startdate"},
		{"StartDate", "startdate"},
		{"start-date", "startdate"},
		{"  Start date  ", "startdate"},
		{"M-Risk Factors", "mriskfactors"},
		{"m_risk_factors", "mriskfactors"},
		{"PersonID", "personid"},
		{"person_id", "personid"},
		{"BMI", "bmi"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildMapping(t *testing.T) {
	// CSV header spelled differently from the expected names
	candidates := []string{"person_id", "Start Date", "END_DATE", "m-risk-factors", "gender", "AGE", "mna", "Bmi", "weight"}

	mapping := BuildMapping(ExpectedColumns, candidates)

	want := map[string]string{
		"PersonID":       "person_id",
		"Start date":     "Start Date",
		"End date":       "END_DATE",
		"M-Risk Factors": "m-risk-factors",
		"Gender":         "gender",
		"Age":            "AGE",
		"MNA":            "mna",
		"BMI":            "Bmi",
		"Weight":         "weight",
	}
	if !reflect.DeepEqual(mapping, want) {
		t.Errorf("BuildMapping() = %v, want %v", mapping, want)
	}

	if missing := Missing(mapping); len(missing) != 0 {
		t.Errorf("Missing() = %v, want none", missing)
	}
}

func TestBuildMapping_FirstCandidateWins(t *testing.T) {
	mapping := BuildMapping([]string{"Age"}, []string{"age", "AGE", "Age "})
	if mapping["Age"] != "age" {
		t.Errorf("mapping[Age] = %q, want %q", mapping["Age"], "age")
	}
}

func TestMissing(t *testing.T) {
	// Source is missing the risk-factor column entirely
	candidates := []string{"PersonID", "Start date", "End date", "Gender", "Age", "MNA", "BMI", "Weight"}

	mapping := BuildMapping(ExpectedColumns, candidates)
	missing := Missing(mapping)

	if !reflect.DeepEqual(missing, []string{"M-Risk Factors"}) {
		t.Errorf("Missing() = %v, want [M-Risk Factors]", missing)
	}
}

func TestMissing_EmptyCandidates(t *testing.T) {
	mapping := BuildMapping(ExpectedColumns, nil)
	missing := Missing(mapping)

	if !reflect.DeepEqual(missing, ExpectedColumns) {
		t.Errorf("Missing() = %v, want all expected columns", missing)
	}
}
