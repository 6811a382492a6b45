package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-profile-api/internal/models"
)

// SubjectRepository persists subject records under their owner.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create appends a record, assigning its id and creation time. The insert is a single
// statement so a failure leaves no partial row.
func (r *SubjectRepository) Create(ctx context.Context, record *models.SubjectRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().UnixMilli()
	}

	const query = `INSERT INTO subjects (id, user_id, subject, teacher, credits, grade, grade_points, status, color, created_at)
VALUES (:id, :user_id, :subject, :teacher, :credits, :grade, :grade_points, :status, :color, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// ListByUser returns all records of a user, oldest first.
func (r *SubjectRepository) ListByUser(ctx context.Context, userID string) ([]models.SubjectRecord, error) {
	const query = `SELECT id, user_id, subject, teacher, credits, grade, grade_points, status, color, created_at FROM subjects WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	records := make([]models.SubjectRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return records, nil
}
