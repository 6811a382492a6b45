package grading

import (
	"strconv"

	"github.com/noah-isme/student-profile-api/internal/models"
)

// Aggregate reduces records to a GPA summary. Only completed records with positive
// credits contribute to the GPA; every record counts toward Total.
//
// Grade points are two-decimal values, so the weighted sum is kept as exact integer
// hundredths and divided once. The result does not depend on record order.
func Aggregate(records []models.SubjectRecord) models.GradeSummary {
	var (
		summary  models.GradeSummary
		weighted int64
		credits  int64
	)

	for _, rec := range records {
		summary.Total++
		switch rec.Status {
		case models.SubjectCompleted:
			summary.Completed++
			if rec.Credits <= 0 {
				continue
			}
			weighted += rec.GradePoints.Hundredths() * int64(rec.Credits)
			credits += int64(rec.Credits)
		case models.SubjectInProgress:
			if rec.Credits > 0 {
				summary.InProgressCredits += rec.Credits
			}
		}
	}

	summary.CompletedCredits = int(credits)

	var hundredths int64
	if credits > 0 {
		// round half up: (2w + c) / 2c
		hundredths = (2*weighted + credits) / (2 * credits)
	}
	summary.GPA = float64(hundredths) / 100
	summary.GPADisplay = strconv.FormatFloat(summary.GPA, 'f', 2, 64)

	return summary
}
