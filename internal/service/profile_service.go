package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

type profileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Merge(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
}

// ProfileService reads and updates the profile document of the signed-in user.
type ProfileService struct {
	repo          profileRepository
	validator     *validator.Validate
	logger        *zap.Logger
	photoMaxBytes int64
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger, photoMaxBytes int64) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
		appErrors.UseJSONNames(validate)
	}
	if photoMaxBytes <= 0 {
		photoMaxBytes = DefaultPhotoMaxBytes
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger, photoMaxBytes: photoMaxBytes}
}

// Get returns the profile of userID.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load profile")
	}
	return profile, nil
}

// Update merges status and/or photo into the profile. Other fields are never touched.
func (s *ProfileService) Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		patch.Status = &status
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Validation(err, "invalid profile payload")
	}
	if patch.Photo != nil {
		photo, err := NormalizePhoto(*patch.Photo, s.photoMaxBytes)
		if err != nil {
			return nil, err
		}
		patch.Photo = &photo
	}

	profile, err := s.repo.Merge(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update profile")
	}

	s.logger.Debug("profile updated", zap.String("user_id", userID), zap.Bool("status", patch.Status != nil), zap.Bool("photo", patch.Photo != nil))
	return profile, nil
}

// UpdatePhoto stores a raw image upload as the profile photo.
func (s *ProfileService) UpdatePhoto(ctx context.Context, userID string, payload []byte) (*models.Profile, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	photo, err := EncodePhoto(payload, s.photoMaxBytes)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, userID, models.ProfilePatch{Photo: &photo})
}
