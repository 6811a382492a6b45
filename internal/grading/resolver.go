// Package grading holds the grade-point table and the GPA aggregation over subject records.
// Everything here is pure: no I/O, no shared mutable state.
package grading

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-profile-api/internal/models"
)

// ScaleEntry pairs a letter grade with its grade points.
type ScaleEntry struct {
	Grade  string             `json:"grade"`
	Points models.GradePoints `json:"gradePoints"`
}

// scale is the canonical 4.00 table, in descending order. E and F are both failing grades.
var scale = []ScaleEntry{
	{Grade: "A", Points: 4.00},
	{Grade: "A-", Points: 3.67},
	{Grade: "B+", Points: 3.33},
	{Grade: "B", Points: 3.00},
	{Grade: "B-", Points: 2.67},
	{Grade: "C+", Points: 2.33},
	{Grade: "C", Points: 2.00},
	{Grade: "C-", Points: 1.67},
	{Grade: "D", Points: 1.00},
	{Grade: "E", Points: 0.00},
	{Grade: "F", Points: 0.00},
}

var table = func() map[string]models.GradePoints {
	m := make(map[string]models.GradePoints, len(scale))
	for _, entry := range scale {
		m[entry.Grade] = entry.Points
	}
	return m
}()

// NormalizeGrade trims and upper-cases a letter grade.
func NormalizeGrade(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}

// Resolve maps a letter grade to its grade points. ok is false for empty or unknown
// grades so an unselected grade never reads as 0.00.
func Resolve(grade string) (points models.GradePoints, ok bool) {
	points, ok = table[NormalizeGrade(grade)]
	return points, ok
}

// Scale returns a copy of the grade table in canonical order.
func Scale() []ScaleEntry {
	out := make([]ScaleEntry, len(scale))
	copy(out, scale)
	return out
}

// RegisterValidation adds the "letter_grade" tag to v.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation("letter_grade", func(fl validator.FieldLevel) bool {
		_, ok := Resolve(fl.Field().String())
		return ok
	})
}
