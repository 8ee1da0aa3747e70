// Package schema defines the fixed patient-record schema and the
// column-name normalization used to reconcile it against CSV headers
// and the destination table's live columns.
package schema

import "strings"

// ExpectedColumns is the ordered, fixed set of fields every import
// source and the destination table must provide. It never changes for
// the lifetime of the process.
var ExpectedColumns = []string{
	"PersonID",
	"Start date",
	"End date",
	"M-Risk Factors",
	"Gender",
	"Age",
	"MNA",
	"BMI",
	"Weight",
}

// Normalize reduces a column name to its canonical key: lowercased with
// whitespace, underscores and hyphens stripped. "Start date",
// "start_date" and "StartDate" all normalize to "startdate".
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '\t', '_', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildMapping resolves each expected field to the first candidate
// whose normalized form matches it. Fields with no matching candidate
// map to the empty string.
func BuildMapping(expected, candidates []string) map[string]string {
	byKey := make(map[string]string, len(candidates))
	for _, c := range candidates {
		key := Normalize(c)
		if _, ok := byKey[key]; !ok {
			byKey[key] = c
		}
	}

	mapping := make(map[string]string, len(expected))
	for _, exp := range expected {
		mapping[exp] = byKey[Normalize(exp)]
	}
	return mapping
}

// Missing returns the expected fields a mapping left unresolved, in
// ExpectedColumns order.
func Missing(mapping map[string]string) []string {
	missing := []string{}
	for _, exp := range ExpectedColumns {
		if mapping[exp] == "" {
			missing = append(missing, exp)
		}
	}
	return missing
}
