package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-profile-api/internal/grading"
	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/export"
	"github.com/noah-isme/student-profile-api/pkg/jobs"
	"github.com/noah-isme/student-profile-api/pkg/storage"
)

type transcriptSubjects interface {
	List(ctx context.Context, userID string) ([]models.SubjectRecord, error)
}

type transcriptProfiles interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
}

type transcriptStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type transcriptSigner interface {
	Sign(ownerID, name string) (string, storage.Link, error)
	Verify(token string) (storage.Link, error)
	TTL() time.Duration
}

var transcriptHeaders = []string{"Subject", "Teacher", "Credits", "Grade", "Grade Points", "Status", "Added"}

type sweepQueue interface {
	Enqueue(task jobs.Task) error
}

// SweepTaskKind identifies the queued removal of expired shared transcripts.
const SweepTaskKind = "transcript_sweep"

// TranscriptService renders a user's grades as CSV, PDF or XLSX and shares them by signed link.
type TranscriptService struct {
	subjects transcriptSubjects
	profiles transcriptProfiles
	storage  transcriptStorage
	signer   transcriptSigner
	metrics  *MetricsService
	logger   *zap.Logger
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	xlsx     *export.XLSXExporter
	now      func() time.Time
	sweeps   sweepQueue
}

// NewTranscriptService constructs a TranscriptService.
func NewTranscriptService(subjects transcriptSubjects, profiles transcriptProfiles, storage transcriptStorage, signer transcriptSigner, metrics *MetricsService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		subjects: subjects,
		profiles: profiles,
		storage:  storage,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		now:      time.Now,
	}
}

// UseSweepQueue moves the expired-share sweep that follows each Share onto q.
func (s *TranscriptService) UseSweepQueue(q sweepQueue) {
	s.sweeps = q
}

// Sweep deletes stored transcripts whose links can no longer be valid.
func (s *TranscriptService) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.storage.CleanupOlderThan(s.signer.TTL())
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		s.logger.Debug("expired transcripts removed", zap.Int("count", len(removed)))
	}
	return len(removed), nil
}

// Export renders the transcript of userID in the requested format.
func (s *TranscriptService) Export(ctx context.Context, userID, format string) (*models.TranscriptFile, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	f, err := export.ParseFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv, pdf or xlsx")
	}

	records, err := s.subjects.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	dataset := s.buildDataset(ctx, userID, records)

	var content []byte
	switch f {
	case export.FormatPDF:
		content, err = s.pdf.Render(dataset)
	case export.FormatXLSX:
		content, err = s.xlsx.Render(dataset)
	default:
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	s.metrics.RecordTranscript(string(f))

	return &models.TranscriptFile{
		Filename:    fmt.Sprintf("transcript-%s.%s", s.now().UTC().Format("20060102"), f),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

// Share renders the transcript, stores it and returns a signed download token.
func (s *TranscriptService) Share(ctx context.Context, userID, format string) (*models.TranscriptShare, error) {
	file, err := s.Export(ctx, userID, format)
	if err != nil {
		return nil, err
	}

	s.scheduleSweep(ctx)

	ext := path.Ext(file.Filename)
	name, err := s.storage.Save(fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext), file.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store transcript")
	}

	token, link, err := s.signer.Sign(userID, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign transcript link")
	}

	return &models.TranscriptShare{
		Format:    strings.TrimPrefix(ext, "."),
		Token:     token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Download resolves a signed token to the stored transcript.
func (s *TranscriptService) Download(ctx context.Context, token string) (*models.TranscriptFile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	link, err := s.signer.Verify(token)
	switch {
	case errors.Is(err, storage.ErrLinkExpired):
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link expired, share the transcript again")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link is invalid")
	}
	if !strings.HasPrefix(link.Name, link.OwnerID+"/") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link is invalid")
	}

	content, err := s.storage.Read(link.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "transcript no longer available")
	}

	f, err := export.ParseFormat(strings.TrimPrefix(path.Ext(link.Name), "."))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "transcript no longer available")
	}
	return &models.TranscriptFile{
		Filename:    "transcript." + string(f),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func (s *TranscriptService) scheduleSweep(ctx context.Context) {
	if s.sweeps != nil {
		if err := s.sweeps.Enqueue(jobs.Task{Kind: SweepTaskKind}); err != nil {
			s.logger.Warn("transcript sweep not scheduled", zap.Error(err))
		}
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("transcript cleanup failed", zap.Error(err))
	}
}

func (s *TranscriptService) buildDataset(ctx context.Context, userID string, records []models.SubjectRecord) export.Dataset {
	title := "Transcript"
	if s.profiles != nil {
		profile, err := s.profiles.Get(ctx, userID)
		switch {
		case err == nil:
			title = strings.TrimSpace(fmt.Sprintf("Transcript %s %s", profile.FirstName, profile.LastName))
		case errors.Is(err, appErrors.ErrNotFound):
		default:
			s.logger.Warn("transcript profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	rows := make([]map[string]string, 0, len(records))
	colors := make([]string, 0, len(records))
	for _, record := range records {
		colors = append(colors, record.Color)
		rows = append(rows, map[string]string{
			"Subject":      record.Subject,
			"Teacher":      record.Teacher,
			"Credits":      strconv.Itoa(record.Credits),
			"Grade":        record.Grade,
			"Grade Points": record.GradePoints.String(),
			"Status":       statusLabel(record.Status),
			"Added":        time.UnixMilli(record.CreatedAt).UTC().Format("2006-01-02"),
		})
	}

	summary := grading.Aggregate(records)
	return export.Dataset{
		Title:     title,
		Subtitle:  "Generated " + s.now().UTC().Format("2006-01-02 15:04 MST"),
		Headers:   transcriptHeaders,
		Rows:      rows,
		Numeric:   []string{"Credits", "Grade Points"},
		RowColors: colors,
		Summary: []export.SummaryLine{
			{Label: "GPA", Value: summary.GPADisplay},
			{Label: "Completed", Value: fmt.Sprintf("%d of %d", summary.Completed, summary.Total)},
			{Label: "Completed credits", Value: strconv.Itoa(summary.CompletedCredits)},
			{Label: "In-progress credits", Value: strconv.Itoa(summary.InProgressCredits)},
		},
	}
}

func statusLabel(status models.SubjectStatus) string {
	if status == models.SubjectInProgress {
		return "In progress"
	}
	return "Completed"
}
