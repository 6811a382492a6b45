package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-profile-api/internal/models"
)

// ProfileRepository reads and merges profile documents.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, first_name, last_name, email, phone, address, religion, birth, status, photo, updated_at`

// Get returns the profile document of a user.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Merge applies the non-nil fields of patch and returns the updated document.
// sql.ErrNoRows is returned when the user has no profile.
func (r *ProfileRepository) Merge(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	sets := []string{"updated_at = $2"}
	args := []interface{}{userID, time.Now().UTC()}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Photo != nil {
		args = append(args, *patch.Photo)
		sets = append(sets, fmt.Sprintf("photo = $%d", len(args)))
	}

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE user_id = $1 RETURNING %s", strings.Join(sets, ", "), profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("merge profile: %w", err)
	}
	return &profile, nil
}
