package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// SubjectStatus is the lifecycle state of a subject record.
type SubjectStatus string

const (
	SubjectCompleted  SubjectStatus = "completed"
	SubjectInProgress SubjectStatus = "in_progress"
)

// Valid reports whether s is one of the known statuses.
func (s SubjectStatus) Valid() bool {
	return s == SubjectCompleted || s == SubjectInProgress
}

// GradePoints is a two-decimal grade-point value in [0.00, 4.00].
type GradePoints float64

// Hundredths returns the value as an exact integer count of hundredths.
func (p GradePoints) Hundredths() int64 {
	return int64(math.Round(float64(p) * 100))
}

func (p GradePoints) String() string {
	return strconv.FormatFloat(float64(p.Hundredths())/100, 'f', 2, 64)
}

// MarshalJSON renders the value as a number with exactly two fractional digits.
func (p GradePoints) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted decimals ("4.00").
func (p *GradePoints) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("grade points: %w", err)
	}
	*p = GradePoints(f)
	return nil
}

// SubjectRecord is one row of a student's course history. Records are append-only.
type SubjectRecord struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"-"`
	Subject     string        `db:"subject" json:"subject"`
	Teacher     string        `db:"teacher" json:"teacher"`
	Credits     int           `db:"credits" json:"credits"`
	Grade       string        `db:"grade" json:"grade"`
	GradePoints GradePoints   `db:"grade_points" json:"gradePoints"`
	Status      SubjectStatus `db:"status" json:"status"`
	Color       string        `db:"color" json:"color"`
	CreatedAt   int64         `db:"created_at" json:"createdAt"`
}

// GradeSummary is the GPA view derived from a set of subject records.
type GradeSummary struct {
	GPA               float64 `json:"gpa"`
	GPADisplay        string  `json:"gpaDisplay"`
	Completed         int     `json:"completed"`
	Total             int     `json:"total"`
	CompletedCredits  int     `json:"completedCredits"`
	InProgressCredits int     `json:"inProgressCredits"`
}

// SubjectSnapshot is a full, immutable copy of a user's subjects delivered to watchers.
type SubjectSnapshot struct {
	Records     []SubjectRecord `json:"records"`
	Summary     GradeSummary    `json:"summary"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// CreateSubjectRequest is the subject form. Grade points are derived from Grade and never
// accepted from the client.
type CreateSubjectRequest struct {
	Subject string        `json:"subject" validate:"required,max=120"`
	Teacher string        `json:"teacher" validate:"required,max=120"`
	Credits int           `json:"credits" validate:"required,oneof=1 2 3 6"`
	Grade   string        `json:"grade" validate:"required,letter_grade"`
	Status  SubjectStatus `json:"status" validate:"required,oneof=completed in_progress"`
	Color   string        `json:"color" validate:"omitempty,hexcolor"`
}
