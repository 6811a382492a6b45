package grading

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-profile-api/internal/models"
)

func completed(credits int, points models.GradePoints) models.SubjectRecord {
	return models.SubjectRecord{Credits: credits, GradePoints: points, Status: models.SubjectCompleted}
}

func inProgress(credits int, points models.GradePoints) models.SubjectRecord {
	return models.SubjectRecord{Credits: credits, GradePoints: points, Status: models.SubjectInProgress}
}

func TestAggregateEmpty(t *testing.T) {
	for _, records := range [][]models.SubjectRecord{nil, {}} {
		summary := Aggregate(records)
		assert.Equal(t, 0.0, summary.GPA)
		assert.Equal(t, "0.00", summary.GPADisplay)
		assert.Zero(t, summary.Completed)
		assert.Zero(t, summary.Total)
	}
}

func TestAggregateOnlyInProgress(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{inProgress(3, 4), inProgress(2, 3.33), inProgress(6, 1)})
	assert.Equal(t, 0.0, summary.GPA)
	assert.Zero(t, summary.Completed)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 11, summary.InProgressCredits)
}

func TestAggregateUniformGrades(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{completed(3, 4), completed(3, 4), completed(3, 4)})
	assert.Equal(t, 4.0, summary.GPA)
	assert.Equal(t, "4.00", summary.GPADisplay)
	assert.Equal(t, 9, summary.CompletedCredits)
}

func TestAggregateIsCreditWeighted(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{completed(3, 4), completed(3, 2)})
	assert.Equal(t, 3.0, summary.GPA)

	summary = Aggregate([]models.SubjectRecord{completed(1, 4), completed(3, 2)})
	assert.Equal(t, 2.5, summary.GPA)
	assert.Equal(t, "2.50", summary.GPADisplay)
}

func TestAggregateMixedStatuses(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{completed(1, 4), completed(3, 2), inProgress(6, 0)})
	assert.Equal(t, 2.5, summary.GPA)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 3, summary.Total)
}

func TestAggregateZeroCreditCompleted(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{completed(0, 4)})
	assert.Equal(t, 0.0, summary.GPA)
	assert.Equal(t, 1, summary.Completed)
}

func TestAggregateRoundsForDisplay(t *testing.T) {
	summary := Aggregate([]models.SubjectRecord{completed(3, 3.67), completed(3, 3.33), completed(2, 4)})
	// (11.01 + 9.99 + 8.00) / 8 = 3.625
	assert.Equal(t, 3.63, summary.GPA)
	assert.Equal(t, "3.63", summary.GPADisplay)
}

func TestAggregateIdempotent(t *testing.T) {
	records := []models.SubjectRecord{completed(3, 3.67), completed(2, 2.33), inProgress(1, 4), completed(6, 1)}
	first := Aggregate(records)
	second := Aggregate(records)
	assert.Equal(t, first, second)
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := []models.SubjectRecord{
		completed(3, 3.67), completed(2, 2.33), inProgress(1, 4), completed(6, 1),
		completed(1, 3.33), completed(3, 2.67), inProgress(3, 0), completed(2, 1.67),
	}
	want := Aggregate(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.SubjectRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregateMonotonic(t *testing.T) {
	base := []models.SubjectRecord{completed(3, 3), completed(2, 2.33), completed(1, 3.67)}
	current := Aggregate(base).GPA

	for _, entry := range Scale() {
		for _, credits := range []int{1, 2, 3, 6} {
			next := Aggregate(append(append([]models.SubjectRecord(nil), base...), completed(credits, entry.Points))).GPA
			switch {
			case float64(entry.Points) > current:
				assert.GreaterOrEqual(t, next, current, "grade %s credits %d", entry.Grade, credits)
			case float64(entry.Points) < current:
				assert.LessOrEqual(t, next, current, "grade %s credits %d", entry.Grade, credits)
			}
		}
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	records := []models.SubjectRecord{completed(3, 4), inProgress(2, 1)}
	snapshot := append([]models.SubjectRecord(nil), records...)
	Aggregate(records)
	assert.Equal(t, snapshot, records)
}
