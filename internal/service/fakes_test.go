package service

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/png"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/models"
	"github.com/noah-isme/student-profile-api/internal/repository"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

type fakeUserRepo struct {
	users         map[string]*models.User
	profiles      map[string]*models.Profile
	refreshTokens map[string]*models.RefreshToken
	createErr     error
	findErr       error
	lastLogin     bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*models.User),
		profiles:      make(map[string]*models.Profile),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if bytes.EqualFold([]byte(u.Email), []byte(email)) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *fakeUserRepo) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, err := m.FindByEmail(ctx, user.Email); err == nil {
		return repository.ErrEmailExists
	}
	user.ID = "user-" + user.Email
	profile.UserID = user.ID
	profile.Email = user.Email
	m.users[user.ID] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin = true
	return nil
}

func (m *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.TokenHash] = token
	return nil
}

func (m *fakeUserRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[tokenHash]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (m *fakeUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			if rt.RevokedAt != nil {
				return repository.ErrTokenRevoked
			}
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]*models.Profile
	err      error
	merges   int
}

func (m *fakeProfileRepo) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[userID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *fakeProfileRepo) Merge(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	m.merges++
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Photo != nil {
		p.Photo = *patch.Photo
	}
	clone := *p
	return &clone, nil
}

type fakeSubjectRepo struct {
	mu        sync.Mutex
	records   []models.SubjectRecord
	createErr error
	listErr   error
	creates   int
	lists     int
	seq       int
}

func (m *fakeSubjectRepo) Create(ctx context.Context, record *models.SubjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	record.ID = "subject-" + string(rune('0'+m.seq))
	m.records = append(m.records, *record)
	return nil
}

func (m *fakeSubjectRepo) ListByUser(ctx context.Context, userID string) ([]models.SubjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.SubjectRecord, 0)
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

type fakeSummaryStore struct {
	mu          sync.Mutex
	summaries   map[string]models.GradeSummary
	generations map[string]int64
	evicted     []string
	genErr      error
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		summaries:   make(map[string]models.GradeSummary),
		generations: make(map[string]int64),
	}
}

func (m *fakeSummaryStore) Generation(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.genErr != nil {
		return 0, m.genErr
	}
	return m.generations[userID], nil
}

func (m *fakeSummaryStore) Load(ctx context.Context, userID string) (*models.GradeSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary, ok := m.summaries[userID]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return &summary, nil
}

func (m *fakeSummaryStore) Store(ctx context.Context, userID string, generation int64, summary models.GradeSummary, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[userID] != generation {
		return false, nil
	}
	m.summaries[userID] = summary
	return true, nil
}

func (m *fakeSummaryStore) Evict(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[userID]++
	delete(m.summaries, userID)
	m.evicted = append(m.evicted, userID)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want.Code, appErrors.FromError(err).Code)
}
