package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// mockFormRepo is an in-memory FormRepository for unit tests.
type mockFormRepo struct {
	forms        map[int64]*models.Form
	nextID       int64
	createErr    error
	published    map[int64]string // form id -> table name set by SetPublished
	publishedVer map[int64]string
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{
		forms:        make(map[int64]*models.Form),
		nextID:       1,
		published:    make(map[int64]string),
		publishedVer: make(map[int64]string),
	}
}

func (m *mockFormRepo) Create(_ context.Context, form *models.Form) error {
	if m.createErr != nil {
		return m.createErr
	}
	form.ID = m.nextID
	m.nextID++
	m.forms[form.ID] = form
	return nil
}

func (m *mockFormRepo) GetByID(_ context.Context, id int64) (*models.Form, error) {
	form, ok := m.forms[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *form
	return &copied, nil
}

func (m *mockFormRepo) List(_ context.Context) ([]*models.Form, error) {
	out := make([]*models.Form, 0, len(m.forms))
	for _, f := range m.forms {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFormRepo) Update(_ context.Context, form *models.Form) error {
	if _, ok := m.forms[form.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.forms[form.ID] = form
	return nil
}

func (m *mockFormRepo) SetPublished(_ context.Context, id int64, tableName, version string) error {
	form, ok := m.forms[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	form.TableName = tableName
	form.CurrentVersion = version
	m.published[id] = tableName
	m.publishedVer[id] = version
	return nil
}

func (m *mockFormRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.forms[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.forms, id)
	return nil
}

// mockVersionRepo records created versions per form.
type mockVersionRepo struct {
	versions  map[int64][]*models.FormVersion
	createErr error
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{versions: make(map[int64][]*models.FormVersion)}
}

func (m *mockVersionRepo) Create(_ context.Context, version *models.FormVersion) error {
	if m.createErr != nil {
		return m.createErr
	}
	version.ID = int64(len(m.versions[version.FormID]) + 1)
	m.versions[version.FormID] = append(m.versions[version.FormID], version)
	return nil
}

func (m *mockVersionRepo) GetByVersion(_ context.Context, formID int64, version string) (*models.FormVersion, error) {
	for _, v := range m.versions[formID] {
		if v.Version == version {
			return v, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockVersionRepo) ListByForm(_ context.Context, formID int64) ([]*models.FormVersion, error) {
	return m.versions[formID], nil
}

func (m *mockVersionRepo) CountByForm(_ context.Context, formID int64) (int, error) {
	return len(m.versions[formID]), nil
}

// mockSynchronizer records Synchronize calls.
type mockSynchronizer struct {
	calls []synchronizeCall
	err   error
}

type synchronizeCall struct {
	schemaName string
	tableName  string
	fieldCount int
}

func (m *mockSynchronizer) Synchronize(_ context.Context, def *models.FormDefinition, schemaName, tableName string) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, synchronizeCall{
		schemaName: schemaName,
		tableName:  tableName,
		fieldCount: len(def.Components),
	})
	return nil
}

// mockIngestor records Insert calls.
type mockIngestor struct {
	calls []ingestCall
	err   error
}

type ingestCall struct {
	tableName   string
	formID      int64
	formVersion string
}

func (m *mockIngestor) Insert(_ context.Context, _ *models.FormDefinition, _, tableName string, formID int64, formVersion string) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, ingestCall{tableName: tableName, formID: formID, formVersion: formVersion})
	return nil
}

// mockQuerier serves canned rows and records the params it was asked with.
type mockQuerier struct {
	rows   []map[string]any
	total  int64
	err    error
	params models.SubmissionListParams
	table  string
}

func (m *mockQuerier) Query(_ context.Context, _, tableName string, params models.SubmissionListParams) ([]map[string]any, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	m.table = tableName
	m.params = params
	return m.rows, m.total, nil
}

// mockColumnLister serves a fixed column list.
type mockColumnLister struct {
	columns []string
}

func (m *mockColumnLister) TableExists(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func (m *mockColumnLister) ListColumns(_ context.Context, _, _ string) ([]string, error) {
	return m.columns, nil
}

func (m *mockColumnLister) ExistingColumns(_ context.Context, _, _ string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(m.columns))
	for _, c := range m.columns {
		set[c] = struct{}{}
	}
	return set, nil
}

// mockInvitationRepo is an in-memory InvitationRepository.
type mockInvitationRepo struct {
	invitations map[int64]*models.Invitation
	nextID      int64
	createErr   error
	statusErr   error
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[int64]*models.Invitation), nextID: 1}
}

func (m *mockInvitationRepo) Create(_ context.Context, invitation *models.Invitation) error {
	if m.createErr != nil {
		return m.createErr
	}
	invitation.ID = m.nextID
	m.nextID++
	invitation.Token = uuid.New()
	invitation.Status = models.InvitationPending
	m.invitations[invitation.ID] = invitation
	return nil
}

func (m *mockInvitationRepo) GetByToken(_ context.Context, token uuid.UUID) (*models.Invitation, error) {
	for _, inv := range m.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockInvitationRepo) ListByForm(_ context.Context, formID int64) ([]*models.Invitation, error) {
	var out []*models.Invitation
	for _, inv := range m.invitations {
		if inv.FormID == formID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvitationRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	inv, ok := m.invitations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	inv.Status = status
	return nil
}

// mockMailer records delivered emails.
type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendInvitation(_ context.Context, email string, _ *models.Form, _ uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}
