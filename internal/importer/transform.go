package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Date layouts accepted for the two date fields, tried in order: ISO
// first, then day/month, then month/day. The first successful parse
// wins, so "13/05/2021" reads as 13 May while "05/13/2021" falls
// through to month/day.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"1-2-2006",
}

// nullWords are cell values treated as absent regardless of field type.
var nullWords = map[string]bool{
	"":     true,
	"none": true,
	"nan":  true,
	"null": true,
	"n/a":  true,
	"na":   true,
}

// CanonicalRow is the typed, coerced form of one source record, ready
// for bulk insertion. Field order mirrors schema.ExpectedColumns.
type CanonicalRow struct {
	PersonID    pgtype.Text
	StartDate   pgtype.Date
	EndDate     pgtype.Date
	RiskFactors pgtype.Text
	Gender      pgtype.Text
	Age         pgtype.Float8
	MNA         pgtype.Float8
	BMI         pgtype.Float8
	Weight      pgtype.Float8
}

// Values returns the row's fields in schema.ExpectedColumns order.
func (r CanonicalRow) Values() []any {
	return []any{
		r.PersonID,
		r.StartDate,
		r.EndDate,
		r.RiskFactors,
		r.Gender,
		r.Age,
		r.MNA,
		r.BMI,
		r.Weight,
	}
}

// TransformRecord coerces one source record, keyed by expected field
// name, into a CanonicalRow. Coercion never fails: a malformed cell
// becomes NULL and the record stays importable. Schema-level strictness
// is the commit transactor's job; cell-level leniency lives here.
func TransformRecord(rec map[string]string) CanonicalRow {
	return CanonicalRow{
		PersonID:    toPgText(rec["PersonID"]),
		StartDate:   toPgDate(rec["Start date"]),
		EndDate:     toPgDate(rec["End date"]),
		RiskFactors: toPgText(rec["M-Risk Factors"]),
		Gender:      toPgText(rec["Gender"]),
		Age:         toPgFloat8(rec["Age"]),
		MNA:         toPgFloat8(rec["MNA"]),
		BMI:         toPgFloat8(rec["BMI"]),
		Weight:      toPgFloat8(rec["Weight"]),
	}
}

func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if nullWords[strings.ToLower(s)] {
		return pgtype.Date{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}
	return pgtype.Date{}
}

func toPgFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if nullWords[strings.ToLower(s)] {
		return pgtype.Float8{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}
