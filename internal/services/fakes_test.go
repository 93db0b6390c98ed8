package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"forumregistrations/internal/domain"
)

const testTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAttendeeRepo is an in-memory AttendeeRepository for tests.
type fakeAttendeeRepo struct {
	byID      map[string]*domain.Attendee
	nextID    int
	createErr error
	updateErr error
	stageErr  error
	// failEmails makes Create/UpdateProfile fail for these normalized emails.
	failEmails map[string]error
	creates    int
	updates    int
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{byID: make(map[string]*domain.Attendee), nextID: 1, failEmails: map[string]error{}}
}

func (f *fakeAttendeeRepo) clone(a *domain.Attendee) *domain.Attendee {
	c := *a
	return &c
}

// seed stores a copy of a, assigning an id when it has none.
func (f *fakeAttendeeRepo) seed(a *domain.Attendee) *domain.Attendee {
	if a.ID == "" {
		a.ID = fmt.Sprintf("a0000000-%04d", f.nextID)
		f.nextID++
	}
	f.byID[a.ID] = f.clone(a)
	return a
}

func (f *fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if err := f.failEmails[domain.NormalizeEmail(a.Email)]; err != nil {
		return err
	}
	for _, e := range f.byID {
		if e.ForumID == a.ForumID && domain.NormalizeEmail(e.Email) == domain.NormalizeEmail(a.Email) {
			return domain.ErrDuplicateAttendee
		}
	}
	f.seed(a)
	return nil
}

func (f *fakeAttendeeRepo) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	if a, ok := f.byID[id]; ok {
		return f.clone(a), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendeeRepo) FindByForumAndEmail(ctx context.Context, forumID, email string) (*domain.Attendee, error) {
	for _, a := range f.byID {
		if a.ForumID == forumID && domain.NormalizeEmail(a.Email) == domain.NormalizeEmail(email) {
			return f.clone(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendeeRepo) all(forumID string) []*domain.Attendee {
	var out []*domain.Attendee
	for _, a := range f.byID {
		if a.ForumID == forumID {
			out = append(out, f.clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAttendeeRepo) ListByForum(ctx context.Context, forumID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	all := f.all(forumID)
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f *fakeAttendeeRepo) ListPendingEnrichment(ctx context.Context, forumID string) ([]*domain.Attendee, error) {
	var out []*domain.Attendee
	for _, a := range f.all(forumID) {
		if a.ExecutiveProfileReceived && !a.ExecutiveProfileEnriched && a.ExecutiveProfileData != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) UpdateProfile(ctx context.Context, a *domain.Attendee) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	if err := f.failEmails[domain.NormalizeEmail(a.Email)]; err != nil {
		return err
	}
	cur, ok := f.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	c := f.clone(a)
	c.Stage = cur.Stage
	c.DenialReason = cur.DenialReason
	c.HubspotDealID = cur.HubspotDealID
	f.byID[a.ID] = c
	return nil
}

func (f *fakeAttendeeRepo) UpdateStage(ctx context.Context, id string, stage domain.Stage) (*domain.Attendee, error) {
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Stage = stage
	return f.clone(a), nil
}

func (f *fakeAttendeeRepo) SetDenialReason(ctx context.Context, id, reason string) (*domain.Attendee, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.DenialReason = &reason
	return f.clone(a), nil
}

func (f *fakeAttendeeRepo) SetEnrichedProfileData(ctx context.Context, id string, data []domain.ProfileAnswer) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := f.failEmails[domain.NormalizeEmail(a.Email)]; err != nil {
		return err
	}
	a.ExecutiveProfileData = data
	a.ExecutiveProfileEnriched = true
	return nil
}

func (f *fakeAttendeeRepo) SetHubspotDealID(ctx context.Context, id, dealID string) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.HubspotDealID = &dealID
	return nil
}

func (f *fakeAttendeeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeForumRepo is the local forum mirror.
type fakeForumRepo struct {
	byID    map[string]*domain.Forum
	upserts int
}

func newFakeForumRepo(forums ...*domain.Forum) *fakeForumRepo {
	f := &fakeForumRepo{byID: map[string]*domain.Forum{}}
	for _, fo := range forums {
		f.byID[fo.ID] = fo
	}
	return f
}

func (f *fakeForumRepo) GetByID(ctx context.Context, id string) (*domain.Forum, error) {
	if fo, ok := f.byID[id]; ok {
		c := *fo
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeForumRepo) Upsert(ctx context.Context, fo *domain.Forum) error {
	f.upserts++
	c := *fo
	f.byID[fo.ID] = &c
	return nil
}

// fakeForumSource is the external forums system.
type fakeForumSource struct {
	byID map[string]*domain.Forum
	err  error
}

func (f *fakeForumSource) GetForum(ctx context.Context, id string) (*domain.Forum, error) {
	if f.err != nil {
		return nil, f.err
	}
	if fo, ok := f.byID[id]; ok {
		c := *fo
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

type fakeSettingsRepo struct {
	byForum map[string]*domain.ForumSettings
}

func newFakeSettingsRepo(settings ...*domain.ForumSettings) *fakeSettingsRepo {
	f := &fakeSettingsRepo{byForum: map[string]*domain.ForumSettings{}}
	for _, s := range settings {
		f.byForum[s.ForumID] = s
	}
	return f
}

func (f *fakeSettingsRepo) GetByForumID(ctx context.Context, forumID string) (*domain.ForumSettings, error) {
	if s, ok := f.byForum[forumID]; ok {
		c := *s
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *domain.ForumSettings) error {
	c := *s
	f.byForum[s.ForumID] = &c
	return nil
}

// fakeAuditRepo is the append-only email audit log.
type fakeAuditRepo struct {
	entries   []*domain.EmailAuditEntry
	createErr error
}

func (f *fakeAuditRepo) Create(ctx context.Context, e *domain.EmailAuditEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("log-%d", len(f.entries)+1)
	e.CreatedAt = e.SentAt
	c := *e
	f.entries = append(f.entries, &c)
	return nil
}

func (f *fakeAuditRepo) ExistsSent(ctx context.Context, attendeeID string, emailType domain.Stage) (bool, error) {
	for _, e := range f.entries {
		if e.AttendeeID == attendeeID && e.EmailType == emailType && e.Status == domain.EmailStatusSent {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuditRepo) ListByAttendee(ctx context.Context, attendeeID string) ([]*domain.EmailAuditEntry, error) {
	var out []*domain.EmailAuditEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].AttendeeID == attendeeID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) sentCount(attendeeID string, emailType domain.Stage) int {
	n := 0
	for _, e := range f.entries {
		if e.AttendeeID == attendeeID && e.EmailType == emailType && e.Status == domain.EmailStatusSent {
			n++
		}
	}
	return n
}

type fakeMailer struct {
	sent []domain.TemplateMessage
	err  error
}

func (f *fakeMailer) SendTemplate(ctx context.Context, msg domain.TemplateMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeChat struct {
	texts []string
	err   error
}

func (f *fakeChat) Send(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

// fakeFormSource serves canned submissions and a form definition.
type fakeFormSource struct {
	subs     []domain.RawSubmission
	pages    []domain.PageInfo
	fetchErr error
	def      *domain.FormDefinition
	defErr   error
	defCalls int
}

func (f *fakeFormSource) FetchSubmissions(ctx context.Context, formID string, creds domain.ProviderCredentials) ([]domain.RawSubmission, []domain.PageInfo, error) {
	if f.fetchErr != nil {
		return nil, f.pages, f.fetchErr
	}
	return f.subs, f.pages, nil
}

func (f *fakeFormSource) FetchFormDefinition(ctx context.Context, formID string, creds domain.ProviderCredentials) (*domain.FormDefinition, error) {
	f.defCalls++
	if f.defErr != nil {
		return nil, f.defErr
	}
	return f.def, nil
}

func submission(pairs ...string) domain.RawSubmission {
	sub := domain.RawSubmission{SubmittedAt: 1700000000000}
	for i := 0; i+1 < len(pairs); i += 2 {
		sub.Values = append(sub.Values, domain.SubmissionValue{Name: pairs[i], Value: pairs[i+1]})
	}
	return sub
}

func testForum() *domain.Forum {
	date := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Forum{ID: "forum-1", Name: "CIO Forum Austin", Brand: "SINC", Date: &date, City: "Austin", Venue: "Hotel Z"}
}

// pipeline wires the stage service with real ledger, forum service and notifier
// over fakes.
type pipeline struct {
	attendees *fakeAttendeeRepo
	forums    *fakeForumRepo
	source    *fakeForumSource
	settings  *fakeSettingsRepo
	audit     *fakeAuditRepo
	mailer    *fakeMailer
	chat      *fakeChat
	stage     domain.StageService
}

func newPipeline() *pipeline {
	p := &pipeline{
		attendees: newFakeAttendeeRepo(),
		forums:    newFakeForumRepo(testForum()),
		source:    &fakeForumSource{byID: map[string]*domain.Forum{}},
		settings:  newFakeSettingsRepo(),
		audit:     &fakeAuditRepo{},
		mailer:    &fakeMailer{},
		chat:      &fakeChat{},
	}
	forumSvc := NewForumService(p.forums, p.source, p.settings, testTimeout)
	ledger := NewNotificationLedger(p.audit)
	notifier := NewOutcomeNotifier(p.mailer, p.chat, ledger, forumSvc, defaultTemplates(), discardLogger())
	p.stage = NewStageService(p.attendees, forumSvc, ledger, notifier, discardLogger(), testTimeout)
	return p
}

func defaultTemplates() domain.TemplateOverrides {
	return domain.TemplateOverrides{Approved: "d-approved", Denied: "d-denied", Waitlisted: "d-waitlisted"}
}
