//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/models"
	"github.com/noah-isme/student-profile-api/internal/testutil/testdb"
)

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer h.Close()

	users := NewUserRepository(h.DB)
	profiles := NewProfileRepository(h.DB)
	subjects := NewSubjectRepository(h.DB)

	user := &models.User{Email: "Ana@Example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateWithProfile(ctx, user, &models.Profile{FirstName: "Ana", LastName: "Putri", Status: "Computer Science | Third Year"}))

	err = users.CreateWithProfile(ctx, &models.User{Email: "ana@example.com", PasswordHash: "hash"}, &models.Profile{FirstName: "Dup"})
	assert.ErrorIs(t, err, ErrEmailExists)

	found, err := users.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	status := "Mathematics | First Year"
	profile, err := profiles.Merge(ctx, user.ID, models.ProfilePatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, profile.Status)
	assert.Equal(t, "Ana", profile.FirstName)

	for i, grade := range []struct {
		grade  string
		points models.GradePoints
	}{{"A", 4.00}, {"B+", 3.33}} {
		require.NoError(t, subjects.Create(ctx, &models.SubjectRecord{
			UserID:      user.ID,
			Subject:     "Course",
			Teacher:     "T",
			Credits:     3,
			Grade:       grade.grade,
			GradePoints: grade.points,
			Status:      models.SubjectCompleted,
			CreatedAt:   int64(1000 + i),
		}))
	}

	records, err := subjects.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Grade)
	assert.Equal(t, int64(333), records[1].GradePoints.Hundredths())
}
