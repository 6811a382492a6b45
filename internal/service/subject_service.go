package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-profile-api/internal/grading"
	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

type subjectRepository interface {
	Create(ctx context.Context, record *models.SubjectRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.SubjectRecord, error)
}

type subjectFeed interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// SubjectServiceOption customises a SubjectService.
type SubjectServiceOption func(*SubjectService)

// WithColorPicker overrides the random palette color used when a form has no color.
func WithColorPicker(pick func() string) SubjectServiceOption {
	return func(s *SubjectService) {
		if pick != nil {
			s.pickColor = pick
		}
	}
}

// WithClock overrides the clock used for createdAt and snapshot timestamps.
func WithClock(now func() time.Time) SubjectServiceOption {
	return func(s *SubjectService) {
		if now != nil {
			s.now = now
		}
	}
}

// SubjectService handles the subject form and the grade views derived from it.
type SubjectService struct {
	repo      subjectRepository
	feed      subjectFeed
	cache     *SummaryCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	pickColor func() string
	now       func() time.Time
}

// NewSubjectService constructs a SubjectService. The validator must have the
// letter_grade tag registered.
func NewSubjectService(repo subjectRepository, feed subjectFeed, cache *SummaryCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, opts ...SubjectServiceOption) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
		appErrors.UseJSONNames(validate)
		_ = grading.RegisterValidation(validate)
	}
	svc := &SubjectService{
		repo:      repo,
		feed:      feed,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		pickColor: grading.RandomColor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create validates the form, derives grade points and appends one record for userID.
func (s *SubjectService) Create(ctx context.Context, userID string, req models.CreateSubjectRequest) (*models.SubjectRecord, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}

	req.Subject = strings.TrimSpace(req.Subject)
	req.Teacher = strings.TrimSpace(req.Teacher)
	req.Grade = grading.NormalizeGrade(req.Grade)
	req.Color = strings.TrimSpace(req.Color)

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, subjectValidationMessage(err))
	}

	points, ok := grading.Resolve(req.Grade)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "please select a grade")
	}

	color := req.Color
	if color == "" {
		color = s.pickColor()
	}

	record := &models.SubjectRecord{
		UserID:      userID,
		Subject:     req.Subject,
		Teacher:     req.Teacher,
		Credits:     req.Credits,
		Grade:       req.Grade,
		GradePoints: points,
		Status:      req.Status,
		Color:       strings.ToUpper(color),
		CreatedAt:   s.now().UnixMilli(),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to save subject, please retry")
	}
	s.metrics.RecordSubjectCreated(record.Status)

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate grade summary", zap.String("user_id", userID), zap.Error(err))
	}
	if s.feed != nil {
		if err := s.feed.Publish(ctx, userID); err != nil {
			s.logger.Warn("failed to publish subject change", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return record, nil
}

// List returns every subject record of userID, oldest first.
func (s *SubjectService) List(ctx context.Context, userID string) ([]models.SubjectRecord, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load subjects")
	}
	if records == nil {
		records = []models.SubjectRecord{}
	}
	return records, nil
}

// Summary returns the GPA summary of userID. cacheHit reports whether it was served from cache.
func (s *SubjectService) Summary(ctx context.Context, userID string) (summary *models.GradeSummary, cacheHit bool, err error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}

	cached, generation := s.cache.Lookup(ctx, userID)
	if cached != nil {
		return cached, true, nil
	}

	records, err := s.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	result := grading.Aggregate(records)
	s.cache.Save(ctx, userID, generation, result)
	return &result, false, nil
}

// Snapshot reads the full current state of userID's subjects.
func (s *SubjectService) Snapshot(ctx context.Context, userID string) (*models.SubjectSnapshot, error) {
	records, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.SubjectSnapshot{
		Records:     records,
		Summary:     grading.Aggregate(records),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Watch calls fn with a full snapshot now and again after every change to userID's
// subjects, until ctx is cancelled or fn returns an error. Each snapshot is a fresh copy.
func (s *SubjectService) Watch(ctx context.Context, userID string, fn func(models.SubjectSnapshot) error) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}

	var changes <-chan struct{}
	if s.feed != nil {
		ch, cancel, err := s.feed.Subscribe(ctx, userID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to subscribe to subject changes")
		}
		defer cancel()
		changes = ch
	}

	s.metrics.StreamOpened()
	defer s.metrics.StreamClosed()

	deliver := func() error {
		snapshot, err := s.Snapshot(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(*snapshot); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	if err := deliver(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := deliver(); err != nil {
				return err
			}
		}
	}
}

func subjectValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid subject payload"
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return "please fill in all fields"
		case "letter_grade":
			return "grade must be one of " + strings.Join(gradeLetters(), ", ")
		case "oneof":
			if fe.StructField() == "Credits" {
				return "credits must be 1, 2, 3 or 6"
			}
			return "status must be completed or in_progress"
		case "hexcolor":
			return "color must be a hex color such as #FFD600"
		case "max":
			return strings.ToLower(fe.Field()) + " is too long"
		}
	}
	return "invalid subject payload"
}

func gradeLetters() []string {
	scale := grading.Scale()
	letters := make([]string, len(scale))
	for i, entry := range scale {
		letters[i] = entry.Grade
	}
	return letters
}
