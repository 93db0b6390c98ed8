package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testAttendeeID = "6f1c1d1e-8a8e-4f57-9a53-0a4c8a3f0e11"

// newRequest builds a request with a JSON body and the given path values.
func newRequest(method, target, body string, pathValues map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	return r
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

type fakeAttendeeService struct {
	attendees   map[string]*domain.Attendee
	err         error
	lastForumID string
	lastProfile domain.AttendeeProfile
	lastFlags   domain.AttendeeFlags
	lastParams  domain.PaginationParams
	deleted     []string
}

func (f *fakeAttendeeService) Get(_ context.Context, id string) (*domain.Attendee, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAttendeeService) ListByForum(_ context.Context, forumID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	f.lastForumID = forumID
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Attendee
	for _, a := range f.attendees {
		if a.ForumID == forumID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAttendeeService) Create(_ context.Context, forumID string, profile domain.AttendeeProfile, flags domain.AttendeeFlags) (*domain.Attendee, error) {
	f.lastForumID, f.lastProfile, f.lastFlags = forumID, profile, flags
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Attendee{ID: testAttendeeID, ForumID: forumID, Stage: domain.StageInQueue, AttendeeProfile: profile}, nil
}

func (f *fakeAttendeeService) UpdateProfile(_ context.Context, id string, profile domain.AttendeeProfile, flags domain.AttendeeFlags) (*domain.Attendee, error) {
	f.lastProfile, f.lastFlags = profile, flags
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Attendee{ID: id, AttendeeProfile: profile}, nil
}

func (f *fakeAttendeeService) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStageService struct {
	result       *domain.TransitionResult
	attendee     *domain.Attendee
	history      []*domain.EmailAuditEntry
	err          error
	lastTarget   domain.Stage
	lastDecision domain.Decision
	lastReason   string
}

func (f *fakeStageService) RequestTransition(_ context.Context, _ string, target domain.Stage) (*domain.TransitionResult, error) {
	f.lastTarget = target
	return f.result, f.err
}

func (f *fakeStageService) ResolveConfirmation(_ context.Context, _ string, target domain.Stage, decision domain.Decision) (*domain.TransitionResult, error) {
	f.lastTarget, f.lastDecision = target, decision
	return f.result, f.err
}

func (f *fakeStageService) SubmitDenialReason(_ context.Context, _ string, reason string) (*domain.Attendee, error) {
	f.lastReason = reason
	return f.attendee, f.err
}

func (f *fakeStageService) SendCurrentOutcomeEmail(_ context.Context, _ string) (*domain.TransitionResult, error) {
	return f.result, f.err
}

func (f *fakeStageService) History(_ context.Context, _ string) ([]*domain.EmailAuditEntry, error) {
	return f.history, f.err
}

type fakeImportService struct {
	result      *domain.ImportResult
	preview     *domain.DuplicatePreview
	err         error
	lastRequest domain.ImportRequest
	lastEmails  []string
}

func (f *fakeImportService) Import(_ context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	f.lastRequest = req
	return f.result, f.err
}

func (f *fakeImportService) PreviewDuplicates(_ context.Context, _ string, emails []string) (*domain.DuplicatePreview, error) {
	f.lastEmails = emails
	return f.preview, f.err
}

type fakeEnrichmentService struct {
	result    *domain.EnrichmentResult
	err       error
	lastForm  string
	lastCreds domain.ProviderCredentials
}

func (f *fakeEnrichmentService) EnrichExecutiveProfiles(_ context.Context, _ string, formID string, creds domain.ProviderCredentials) (*domain.EnrichmentResult, error) {
	f.lastForm, f.lastCreds = formID, creds
	return f.result, f.err
}

type fakeForumService struct {
	forum        *domain.Forum
	settings     *domain.ForumSettings
	err          error
	lastSettings *domain.ForumSettings
	synced       []string
}

func (f *fakeForumService) Resolve(_ context.Context, _ string) (*domain.Forum, error) {
	return f.forum, f.err
}

func (f *fakeForumService) Sync(_ context.Context, id string) (*domain.Forum, error) {
	f.synced = append(f.synced, id)
	return f.forum, f.err
}

func (f *fakeForumService) Settings(_ context.Context, _ string) (*domain.ForumSettings, error) {
	return f.settings, f.err
}

func (f *fakeForumService) SaveSettings(_ context.Context, s *domain.ForumSettings) (*domain.ForumSettings, error) {
	f.lastSettings = s
	if f.err != nil {
		return nil, f.err
	}
	return s, nil
}

type fakeCRMSyncService struct {
	result      *domain.CRMSyncResult
	err         error
	lastOutcome domain.Stage
}

func (f *fakeCRMSyncService) SyncDeal(_ context.Context, _ string, outcome domain.Stage) (*domain.CRMSyncResult, error) {
	f.lastOutcome = outcome
	return f.result, f.err
}

func jsonDecode(rec *httptest.ResponseRecorder, dest any) error {
	return json.NewDecoder(rec.Body).Decode(dest)
}
