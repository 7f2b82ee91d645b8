package access

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medledger/access-control-api/internal/access/model"
	"github.com/medledger/access-control-api/internal/auditlog"
	auditmodel "github.com/medledger/access-control-api/internal/auditlog/model"
	"github.com/medledger/access-control-api/internal/credential"
	credmodel "github.com/medledger/access-control-api/internal/credential/model"
	"github.com/medledger/access-control-api/internal/system/config"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/error/codes"
	"github.com/medledger/access-control-api/internal/system/stores"
)

const (
	testAdmin   = "admin:test"
	testPatient = "patient-1"
)

// fakeSequencer mirrors the chain.Sequencer contract over memory.
type fakeSequencer struct {
	height int64
}

func (f *fakeSequencer) CurrentHeight() int64 {
	return f.height
}

func (f *fakeSequencer) Submit(build func(height int64) ([]func(tx dbmodel.TxInterface) error, error)) (int64, error) {
	height := f.height + 1
	queries, err := build(height)
	if err != nil {
		return 0, err
	}
	for _, query := range queries {
		if err := query(nil); err != nil {
			return 0, err
		}
	}
	f.height = height
	return height, nil
}

// fakeCredentialStore is the in-memory slice of the registry the ledger
// tests need.
type fakeCredentialStore struct {
	credentials   map[string]credmodel.ProviderCredential
	statuses      map[string]credmodel.ProviderStatus
	types         map[string]credmodel.CredentialType
	verifications map[string][]credmodel.CredentialVerification
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{
		credentials:   make(map[string]credmodel.ProviderCredential),
		statuses:      make(map[string]credmodel.ProviderStatus),
		types:         make(map[string]credmodel.CredentialType),
		verifications: make(map[string][]credmodel.CredentialVerification),
	}
}

func (f *fakeCredentialStore) CreateCredential(_ dbmodel.TxInterface, c *credmodel.ProviderCredential) error {
	f.credentials[c.ProviderID] = *c
	return nil
}

func (f *fakeCredentialStore) GetCredential(_ context.Context, providerID string) (*credmodel.ProviderCredential, error) {
	c, ok := f.credentials[providerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeCredentialStore) UpdateCredential(_ dbmodel.TxInterface, c *credmodel.ProviderCredential) error {
	f.credentials[c.ProviderID] = *c
	return nil
}

func (f *fakeCredentialStore) UpdateSuspensionReason(_ dbmodel.TxInterface, providerID string, reason *string) error {
	c := f.credentials[providerID]
	c.SuspensionReason = reason
	f.credentials[providerID] = c
	return nil
}

func (f *fakeCredentialStore) CreateStatus(_ dbmodel.TxInterface, s *credmodel.ProviderStatus) error {
	f.statuses[s.ProviderID] = *s
	return nil
}

func (f *fakeCredentialStore) GetStatus(_ context.Context, providerID string) (*credmodel.ProviderStatus, error) {
	s, ok := f.statuses[providerID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeCredentialStore) UpdateStatusState(_ dbmodel.TxInterface, providerID, status, updatedBy string) error {
	s := f.statuses[providerID]
	s.Status = status
	s.LastUpdatedBy = updatedBy
	f.statuses[providerID] = s
	return nil
}

func (f *fakeCredentialStore) RecordActivity(_ dbmodel.TxInterface, providerID string, height int64) error {
	s := f.statuses[providerID]
	s.AccessCount++
	s.LastActivityHeight = height
	f.statuses[providerID] = s
	return nil
}

func (f *fakeCredentialStore) UpsertCredentialType(_ dbmodel.TxInterface, t *credmodel.CredentialType) error {
	f.types[t.Type] = *t
	return nil
}

func (f *fakeCredentialStore) GetCredentialType(_ context.Context, credentialType string) (*credmodel.CredentialType, error) {
	t, ok := f.types[credentialType]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeCredentialStore) ListCredentialTypes(_ context.Context) ([]credmodel.CredentialType, error) {
	types := make([]credmodel.CredentialType, 0, len(f.types))
	for _, t := range f.types {
		types = append(types, t)
	}
	return types, nil
}

func (f *fakeCredentialStore) CreateVerification(_ dbmodel.TxInterface, v *credmodel.CredentialVerification) error {
	f.verifications[v.ProviderID] = append(f.verifications[v.ProviderID], *v)
	return nil
}

func (f *fakeCredentialStore) GetVerificationsByProviderID(_ context.Context, providerID string) ([]credmodel.CredentialVerification, error) {
	return f.verifications[providerID], nil
}

// fakeAuditStore is the in-memory slice of the audit log the ledger tests
// need.
type fakeAuditStore struct {
	events map[string]auditmodel.AuditEvent
	index  map[string]map[int64]string
	counts map[string]int64
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{
		events: make(map[string]auditmodel.AuditEvent),
		index:  make(map[string]map[int64]string),
		counts: make(map[string]int64),
	}
}

func (f *fakeAuditStore) CreateEvent(_ dbmodel.TxInterface, e *auditmodel.AuditEvent) error {
	f.events[e.EventID] = *e
	return nil
}

func (f *fakeAuditStore) GetEvent(_ context.Context, eventID string) (*auditmodel.AuditEvent, error) {
	e, ok := f.events[eventID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeAuditStore) CreateIndexEntry(_ dbmodel.TxInterface, patientID string, seq int64, eventID string) error {
	if f.index[patientID] == nil {
		f.index[patientID] = make(map[int64]string)
	}
	f.index[patientID][seq] = eventID
	return nil
}

func (f *fakeAuditStore) GetEventIDBySequence(_ context.Context, patientID string, seq int64) (string, error) {
	return f.index[patientID][seq], nil
}

func (f *fakeAuditStore) GetEventCount(_ context.Context, patientID string) (int64, error) {
	return f.counts[patientID], nil
}

func (f *fakeAuditStore) UpsertEventCount(_ dbmodel.TxInterface, patientID string, count int64) error {
	f.counts[patientID] = count
	return nil
}

func (f *fakeAuditStore) GetEventsByPatient(_ context.Context, patientID string, limit, offset int) ([]auditmodel.AuditEvent, error) {
	events := make([]auditmodel.AuditEvent, 0, limit)
	for seq := int64(offset); seq < f.counts[patientID] && len(events) < limit; seq++ {
		events = append(events, f.events[f.index[patientID][seq]])
	}
	return events, nil
}

// fakeAccessStore is an in-memory AccessStore.
type fakeAccessStore struct {
	consents map[string]model.PatientConsent
	grants   map[string]model.AccessGrant
}

func newFakeAccessStore() *fakeAccessStore {
	return &fakeAccessStore{
		consents: make(map[string]model.PatientConsent),
		grants:   make(map[string]model.AccessGrant),
	}
}

func pairKey(patientID, providerID string) string {
	return patientID + "|" + providerID
}

func (f *fakeAccessStore) CreateConsent(_ dbmodel.TxInterface, c *model.PatientConsent) error {
	f.consents[pairKey(c.PatientID, c.ProviderID)] = *c
	return nil
}

func (f *fakeAccessStore) GetConsent(_ context.Context, patientID, providerID string) (*model.PatientConsent, error) {
	c, ok := f.consents[pairKey(patientID, providerID)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeAccessStore) RevokeConsent(_ dbmodel.TxInterface, patientID, providerID string, revokedAtHeight int64, revokerID string) error {
	c := f.consents[pairKey(patientID, providerID)]
	c.Status = model.ConsentStatusRevoked
	c.RevokedAtHeight = &revokedAtHeight
	c.RevokerID = &revokerID
	f.consents[pairKey(patientID, providerID)] = c
	return nil
}

func (f *fakeAccessStore) UpsertGrant(_ dbmodel.TxInterface, g *model.AccessGrant) error {
	f.grants[pairKey(g.PatientID, g.ProviderID)] = *g
	return nil
}

func (f *fakeAccessStore) GetGrant(_ context.Context, patientID, providerID string) (*model.AccessGrant, error) {
	g, ok := f.grants[pairKey(patientID, providerID)]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeAccessStore) UpdateGrantUsage(_ dbmodel.TxInterface, patientID, providerID string, accessCount, lastAccessedHeight int64) error {
	g := f.grants[pairKey(patientID, providerID)]
	g.AccessCount = accessCount
	g.LastAccessedHeight = &lastAccessedHeight
	f.grants[pairKey(patientID, providerID)] = g
	return nil
}

func (f *fakeAccessStore) UpdateGrantStatus(_ dbmodel.TxInterface, patientID, providerID, status string) error {
	g := f.grants[pairKey(patientID, providerID)]
	g.Status = status
	f.grants[pairKey(patientID, providerID)] = g
	return nil
}

type ledgerFixture struct {
	access     AccessService
	registry   credential.CredentialService
	audit      auditlog.AuditService
	sequencer  *fakeSequencer
	credStore  *fakeCredentialStore
	auditStore *fakeAuditStore
	grantStore *fakeAccessStore
}

func setupLedger(t *testing.T) *ledgerFixture {
	t.Helper()
	config.SetGlobal(&config.Config{
		Registry: config.RegistryConfig{Administrators: []string{testAdmin}},
		Chain: config.ChainConfig{
			MinCredentialValidityBlocks: 100,
			MaxGrantDurationBlocks:      100000,
		},
	})

	credStore := newFakeCredentialStore()
	auditStore := newFakeAuditStore()
	grantStore := newFakeAccessStore()
	sequencer := &fakeSequencer{}
	registry := stores.NewStoreRegistry(nil, sequencer, credStore, auditStore, grantStore)

	mux := http.NewServeMux()
	registryService := credential.Initialize(mux, registry)
	auditService := auditlog.Initialize(mux, registry)
	accessService := newAccessService(registry, registryService, auditService)

	return &ledgerFixture{
		access:     accessService,
		registry:   registryService,
		audit:      auditService,
		sequencer:  sequencer,
		credStore:  credStore,
		auditStore: auditStore,
		grantStore: grantStore,
	}
}

func (fx *ledgerFixture) registerProvider(t *testing.T, providerID string, expiresAt int64) {
	t.Helper()
	fx.credStore.types["medical-license"] = credmodel.CredentialType{Type: "medical-license", RequiredForAccess: true}

	_, svcErr := fx.registry.RegisterProvider(context.Background(), testAdmin, credmodel.RegisterProviderRequest{
		ProviderID:       providerID,
		LicenseNumber:    "LIC-100",
		CredentialTypes:  []string{"medical-license"},
		ExpiresAtHeight:  expiresAt,
		IssuingAuthority: "state medical board",
		CredentialHash:   "a1b2c3d4",
	})
	require.Nil(t, svcErr)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestEndToEndGrantLifecycle(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	now := fx.sequencer.CurrentHeight()
	grant, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: now + 500,
		RecordScope:  []string{"lab-results"},
		MaxAccesses:  int64Ptr(2),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, model.GrantStatusActive, grant.Status)
	assert.Greater(t, grant.ExpiryHeight, grant.GrantedAtHeight)

	// The grant, the activity record, and the audit event commit together.
	assert.Equal(t, int64(1), fx.credStore.statuses["provider-1"].AccessCount)
	assert.Equal(t, int64(1), fx.auditStore.counts[testPatient])
	granted := fx.auditStore.events[fx.auditStore.index[testPatient][0]]
	assert.Equal(t, model.EventTypeAccessGranted, granted.EventType)
	assert.Equal(t, []string{"lab-results"}, granted.RecordScope)

	for i := 0; i < 2; i++ {
		used, svcErr := fx.access.UseAccess(ctx, "provider-1", testPatient)
		require.Nil(t, svcErr)
		assert.Equal(t, int64(i+1), used.AccessCount)
	}
	assert.Equal(t, int64(3), fx.credStore.statuses["provider-1"].AccessCount)
	assert.Equal(t, int64(3), fx.auditStore.counts[testPatient])
	used := fx.auditStore.events[fx.auditStore.index[testPatient][2]]
	assert.Equal(t, model.EventTypeAccessUsed, used.EventType)

	// The budget is exhausted even though the expiry has not passed.
	_, svcErr = fx.access.UseAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)

	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)

	// Exhaustion is a check-time condition, not a stored transition.
	stored, svcErr := fx.access.GetAccessGrant(ctx, "provider-1", testPatient)
	require.Nil(t, svcErr)
	assert.Equal(t, model.GrantStatusActive, stored.Status)
	assert.Equal(t, int64(2), stored.AccessCount)

	// The failed use mutated nothing.
	assert.Equal(t, int64(3), fx.auditStore.counts[testPatient])
	assert.Equal(t, int64(3), fx.credStore.statuses["provider-1"].AccessCount)
}

func TestGrantAccessValidation(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)
	now := fx.sequencer.CurrentHeight()

	cases := []struct {
		name string
		req  model.GrantAccessRequest
		code int
	}{
		{"empty patient", model.GrantAccessRequest{ProviderID: "provider-1", ExpiryHeight: now + 500, RecordScope: []string{"x"}}, codes.InvalidPatientID},
		{"empty scope", model.GrantAccessRequest{ProviderID: "provider-1", PatientID: testPatient, ExpiryHeight: now + 500}, codes.InvalidScope},
		{"zero max accesses", model.GrantAccessRequest{ProviderID: "provider-1", PatientID: testPatient, ExpiryHeight: now + 500, RecordScope: []string{"x"}, MaxAccesses: int64Ptr(0)}, codes.InvalidMaxAccesses},
		{"expiry in the past", model.GrantAccessRequest{ProviderID: "provider-1", PatientID: testPatient, ExpiryHeight: now, RecordScope: []string{"x"}}, codes.InvalidGrant},
		{"expiry beyond max duration", model.GrantAccessRequest{ProviderID: "provider-1", PatientID: testPatient, ExpiryHeight: now + 200000, RecordScope: []string{"x"}}, codes.InvalidGrant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, svcErr := fx.access.GrantAccess(ctx, testAdmin, tc.req)
			require.NotNil(t, svcErr)
			assert.Equal(t, tc.code, svcErr.Code)
		})
	}

	assert.Empty(t, fx.grantStore.grants)
	assert.Equal(t, int64(0), fx.auditStore.counts[testPatient])
}

func TestGrantAccessRequiresVerifiedProvider(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()

	_, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "ghost",
		PatientID:    testPatient,
		ExpiryHeight: 500,
		RecordScope:  []string{"lab-results"},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotVerified, svcErr.Code)
	assert.Empty(t, fx.grantStore.grants)
	assert.Equal(t, int64(0), fx.auditStore.counts[testPatient])
}

func TestSuspendedProviderCannotBeGranted(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	_, svcErr := fx.registry.SuspendProvider(ctx, testAdmin, "provider-1", credmodel.SuspendProviderRequest{Reason: "license under review"})
	require.Nil(t, svcErr)

	_, svcErr = fx.registry.VerifyProvider(ctx, "provider-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderSuspended, svcErr.Code)

	_, svcErr = fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 500,
		RecordScope:  []string{"lab-results"},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotVerified, svcErr.Code)
}

func TestRevokeAccessAlwaysDefeatsHasAccess(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	_, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 500,
		RecordScope:  []string{"lab-results"},
		MaxAccesses:  int64Ptr(10),
	})
	require.Nil(t, svcErr)

	revoked, svcErr := fx.access.RevokeAccess(ctx, "provider-1", testPatient)
	require.Nil(t, svcErr)
	assert.Equal(t, model.GrantStatusRevoked, revoked.Status)

	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)

	_, svcErr = fx.access.UseAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)
	assert.Equal(t, int64(0), fx.grantStore.grants[pairKey(testPatient, "provider-1")].AccessCount)

	_, svcErr = fx.access.RevokeAccess(ctx, "provider-1", "nobody")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.GrantNotFound, svcErr.Code)
}

func TestHasAccessDistinguishesTimeExpiry(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	_, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 10,
		RecordScope:  []string{"lab-results"},
	})
	require.Nil(t, svcErr)

	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	assert.Nil(t, svcErr)

	fx.sequencer.height += 10
	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.GrantExpired, svcErr.Code)

	// The stored record still reads active; expiry is never written back.
	stored, svcErr := fx.access.GetAccessGrant(ctx, "provider-1", testPatient)
	require.Nil(t, svcErr)
	assert.Equal(t, model.GrantStatusActive, stored.Status)

	_, svcErr = fx.access.HasAccess(ctx, "provider-1", "nobody")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.GrantNotFound, svcErr.Code)
}

func TestGrantOverwriteResetsCounters(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	_, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 500,
		RecordScope:  []string{"lab-results"},
		MaxAccesses:  int64Ptr(1),
	})
	require.Nil(t, svcErr)

	_, svcErr = fx.access.UseAccess(ctx, "provider-1", testPatient)
	require.Nil(t, svcErr)
	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	require.NotNil(t, svcErr)

	// A new grant for the pair overwrites the exhausted one.
	fresh, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 500,
		RecordScope:  []string{"imaging"},
		MaxAccesses:  int64Ptr(5),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, int64(0), fresh.AccessCount)

	_, svcErr = fx.access.HasAccess(ctx, "provider-1", testPatient)
	assert.Nil(t, svcErr)
}

func TestHasRecordScopeAccess(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()
	fx.registerProvider(t, "provider-1", 10000)

	_, svcErr := fx.access.GrantAccess(ctx, testAdmin, model.GrantAccessRequest{
		ProviderID:   "provider-1",
		PatientID:    testPatient,
		ExpiryHeight: fx.sequencer.CurrentHeight() + 500,
		RecordScope:  []string{"lab-results", "imaging"},
	})
	require.Nil(t, svcErr)

	_, svcErr = fx.access.HasRecordScopeAccess(ctx, "provider-1", testPatient, "imaging")
	assert.Nil(t, svcErr)

	_, svcErr = fx.access.HasRecordScopeAccess(ctx, "provider-1", testPatient, "prescriptions")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)
}

func TestConsentLifecycle(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()

	consent, svcErr := fx.access.ApproveProviderAccess(ctx, testPatient, model.ApproveAccessRequest{
		ProviderID:  "provider-q",
		RecordScope: []string{"imaging"},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, model.ConsentStatusApproved, consent.Status)

	evaluated, svcErr := fx.access.HasPatientConsent(ctx, testPatient, "provider-q")
	require.Nil(t, svcErr)
	assert.Equal(t, []string{"imaging"}, evaluated.RecordScope)

	revoked, svcErr := fx.access.RevokeProviderConsent(ctx, testPatient, "provider-q")
	require.Nil(t, svcErr)
	assert.Equal(t, model.ConsentStatusRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokerID)
	assert.Equal(t, testPatient, *revoked.RevokerID)

	_, svcErr = fx.access.HasPatientConsent(ctx, testPatient, "provider-q")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ConsentNotApproved, svcErr.Code)

	// The pre-existing record blocks re-creation even though it is revoked.
	_, svcErr = fx.access.ApproveProviderAccess(ctx, testPatient, model.ApproveAccessRequest{
		ProviderID:  "provider-q",
		RecordScope: []string{"imaging"},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidGrant, svcErr.Code)
}

func TestConsentFailureReasonsAreDistinct(t *testing.T) {
	fx := setupLedger(t)
	ctx := context.Background()

	_, svcErr := fx.access.HasPatientConsent(ctx, testPatient, "nobody")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ConsentNotFound, svcErr.Code)

	_, svcErr = fx.access.ApproveProviderAccess(ctx, testPatient, model.ApproveAccessRequest{
		ProviderID:      "provider-q",
		RecordScope:     []string{"imaging"},
		ExpiresAtHeight: int64Ptr(fx.sequencer.CurrentHeight() + 5),
	})
	require.Nil(t, svcErr)

	fx.sequencer.height += 5
	_, svcErr = fx.access.HasPatientConsent(ctx, testPatient, "provider-q")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.GrantExpired, svcErr.Code)
}

func TestApproveProviderAccessRejectsEmptyScope(t *testing.T) {
	fx := setupLedger(t)

	_, svcErr := fx.access.ApproveProviderAccess(context.Background(), testPatient, model.ApproveAccessRequest{
		ProviderID: "provider-q",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidScope, svcErr.Code)
}

func TestRevokeProviderConsentUnknownPair(t *testing.T) {
	fx := setupLedger(t)

	_, svcErr := fx.access.RevokeProviderConsent(context.Background(), testPatient, "nobody")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ConsentNotFound, svcErr.Code)
}
