package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medledger/access-control-api/internal/credential/model"
	"github.com/medledger/access-control-api/internal/system/config"
	"github.com/medledger/access-control-api/internal/system/constants"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/error/codes"
	"github.com/medledger/access-control-api/internal/system/stores"
)

const testAdmin = "admin:test"

// fakeSequencer runs build callbacks against in-memory stores without a
// database. Writes are not staged, which is fine: precondition failures
// reject before any query runs.
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

// fakeCredentialStore is an in-memory CredentialStore.
type fakeCredentialStore struct {
	credentials   map[string]model.ProviderCredential
	statuses      map[string]model.ProviderStatus
	types         map[string]model.CredentialType
	verifications map[string][]model.CredentialVerification
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{
		credentials:   make(map[string]model.ProviderCredential),
		statuses:      make(map[string]model.ProviderStatus),
		types:         make(map[string]model.CredentialType),
		verifications: make(map[string][]model.CredentialVerification),
	}
}

func (f *fakeCredentialStore) CreateCredential(_ dbmodel.TxInterface, credential *model.ProviderCredential) error {
	f.credentials[credential.ProviderID] = *credential
	return nil
}

func (f *fakeCredentialStore) GetCredential(_ context.Context, providerID string) (*model.ProviderCredential, error) {
	credential, ok := f.credentials[providerID]
	if !ok {
		return nil, nil
	}
	return &credential, nil
}

func (f *fakeCredentialStore) UpdateCredential(_ dbmodel.TxInterface, credential *model.ProviderCredential) error {
	stored := f.credentials[credential.ProviderID]
	stored.CredentialTypes = credential.CredentialTypes
	stored.ExpiresAtHeight = credential.ExpiresAtHeight
	stored.LastVerifiedHeight = credential.LastVerifiedHeight
	f.credentials[credential.ProviderID] = stored
	return nil
}

func (f *fakeCredentialStore) UpdateSuspensionReason(_ dbmodel.TxInterface, providerID string, reason *string) error {
	stored := f.credentials[providerID]
	stored.SuspensionReason = reason
	f.credentials[providerID] = stored
	return nil
}

func (f *fakeCredentialStore) CreateStatus(_ dbmodel.TxInterface, status *model.ProviderStatus) error {
	f.statuses[status.ProviderID] = *status
	return nil
}

func (f *fakeCredentialStore) GetStatus(_ context.Context, providerID string) (*model.ProviderStatus, error) {
	status, ok := f.statuses[providerID]
	if !ok {
		return nil, nil
	}
	return &status, nil
}

func (f *fakeCredentialStore) UpdateStatusState(_ dbmodel.TxInterface, providerID, status, updatedBy string) error {
	stored := f.statuses[providerID]
	stored.Status = status
	stored.LastUpdatedBy = updatedBy
	f.statuses[providerID] = stored
	return nil
}

func (f *fakeCredentialStore) RecordActivity(_ dbmodel.TxInterface, providerID string, height int64) error {
	stored := f.statuses[providerID]
	stored.AccessCount++
	stored.LastActivityHeight = height
	f.statuses[providerID] = stored
	return nil
}

func (f *fakeCredentialStore) UpsertCredentialType(_ dbmodel.TxInterface, credentialType *model.CredentialType) error {
	f.types[credentialType.Type] = *credentialType
	return nil
}

func (f *fakeCredentialStore) GetCredentialType(_ context.Context, credentialType string) (*model.CredentialType, error) {
	t, ok := f.types[credentialType]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeCredentialStore) ListCredentialTypes(_ context.Context) ([]model.CredentialType, error) {
	types := make([]model.CredentialType, 0, len(f.types))
	for _, t := range f.types {
		types = append(types, t)
	}
	return types, nil
}

func (f *fakeCredentialStore) CreateVerification(_ dbmodel.TxInterface, verification *model.CredentialVerification) error {
	f.verifications[verification.ProviderID] = append(f.verifications[verification.ProviderID], *verification)
	return nil
}

func (f *fakeCredentialStore) GetVerificationsByProviderID(_ context.Context, providerID string) ([]model.CredentialVerification, error) {
	return f.verifications[providerID], nil
}

func setupService(t *testing.T) (CredentialService, *fakeCredentialStore, *fakeSequencer) {
	t.Helper()
	config.SetGlobal(&config.Config{
		Registry: config.RegistryConfig{Administrators: []string{testAdmin}},
		Chain: config.ChainConfig{
			MinCredentialValidityBlocks: 100,
			MaxGrantDurationBlocks:      100000,
		},
	})

	store := newFakeCredentialStore()
	sequencer := &fakeSequencer{}
	registry := stores.NewStoreRegistry(nil, sequencer, store, nil, nil)
	return newCredentialService(registry), store, sequencer
}

func registerTestProvider(t *testing.T, service CredentialService, store *fakeCredentialStore, providerID string, expiresAt int64) {
	t.Helper()
	store.types["medical-license"] = model.CredentialType{Type: "medical-license", RequiredForAccess: true}

	_, svcErr := service.RegisterProvider(context.Background(), testAdmin, model.RegisterProviderRequest{
		ProviderID:       providerID,
		LicenseNumber:    "LIC-100",
		CredentialTypes:  []string{"medical-license"},
		ExpiresAtHeight:  expiresAt,
		IssuingAuthority: "state medical board",
		CredentialHash:   "a1b2c3d4",
	})
	require.Nil(t, svcErr)
}

func TestRegisterProviderCreatesAllThreeRecords(t *testing.T) {
	service, store, sequencer := setupService(t)
	registerTestProvider(t, service, store, "provider-1", 10000)

	credential := store.credentials["provider-1"]
	assert.Equal(t, model.VerificationStatusVerified, credential.VerificationStatus)
	assert.Equal(t, int64(1), credential.IssuedAtHeight)
	assert.Equal(t, int64(10000), credential.ExpiresAtHeight)

	status := store.statuses["provider-1"]
	assert.Equal(t, model.ProviderStatusActive, status.Status)
	assert.Equal(t, int64(0), status.AccessCount)
	assert.Equal(t, testAdmin, status.LastUpdatedBy)

	require.Len(t, store.verifications["provider-1"], 1)
	assert.Equal(t, testAdmin, store.verifications["provider-1"][0].VerifierID)
	assert.Equal(t, "a1b2c3d4", store.verifications["provider-1"][0].CredentialHash)

	assert.Equal(t, int64(1), sequencer.CurrentHeight())
}

func TestRegisterProviderRequiresAdministrator(t *testing.T) {
	service, store, _ := setupService(t)
	store.types["medical-license"] = model.CredentialType{Type: "medical-license"}

	_, svcErr := service.RegisterProvider(context.Background(), "someone-else", model.RegisterProviderRequest{
		ProviderID:      "provider-1",
		LicenseNumber:   "LIC-100",
		CredentialTypes: []string{"medical-license"},
		ExpiresAtHeight: 10000,
		CredentialHash:  "a1b2c3d4",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.RegistryNotAuthorized, svcErr.Code)
	assert.Empty(t, store.credentials)
}

func TestRegisterProviderRejectsDuplicate(t *testing.T) {
	service, store, _ := setupService(t)
	registerTestProvider(t, service, store, "provider-1", 10000)

	_, svcErr := service.RegisterProvider(context.Background(), testAdmin, model.RegisterProviderRequest{
		ProviderID:      "provider-1",
		LicenseNumber:   "LIC-200",
		CredentialTypes: []string{"medical-license"},
		ExpiresAtHeight: 10000,
		CredentialHash:  "ffff",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderAlreadyExists, svcErr.Code)
}

func TestRegisterProviderEnforcesMinimumValidityWindow(t *testing.T) {
	service, store, _ := setupService(t)
	store.types["medical-license"] = model.CredentialType{Type: "medical-license"}

	// Commit height will be 1; 50 is in the future but inside the
	// 100-block minimum window.
	_, svcErr := service.RegisterProvider(context.Background(), testAdmin, model.RegisterProviderRequest{
		ProviderID:      "provider-1",
		LicenseNumber:   "LIC-100",
		CredentialTypes: []string{"medical-license"},
		ExpiresAtHeight: 50,
		CredentialHash:  "a1b2c3d4",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidExpiry, svcErr.Code)
	assert.Empty(t, store.credentials)
}

func TestRegisterProviderRejectsUnregisteredType(t *testing.T) {
	service, _, _ := setupService(t)

	_, svcErr := service.RegisterProvider(context.Background(), testAdmin, model.RegisterProviderRequest{
		ProviderID:      "provider-1",
		LicenseNumber:   "LIC-100",
		CredentialTypes: []string{"unknown-type"},
		ExpiresAtHeight: 10000,
		CredentialHash:  "a1b2c3d4",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidCredentialType, svcErr.Code)
}

func TestRegisterProviderRejectsEmptyCredentialHash(t *testing.T) {
	service, store, _ := setupService(t)
	store.types["medical-license"] = model.CredentialType{Type: "medical-license"}

	_, svcErr := service.RegisterProvider(context.Background(), testAdmin, model.RegisterProviderRequest{
		ProviderID:      "provider-1",
		LicenseNumber:   "LIC-100",
		CredentialTypes: []string{"medical-license"},
		ExpiresAtHeight: 10000,
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidCredentials, svcErr.Code)
}

func TestVerifyProviderDistinguishesFailureReasons(t *testing.T) {
	service, store, sequencer := setupService(t)
	ctx := context.Background()

	_, svcErr := service.VerifyProvider(ctx, "missing")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotFound, svcErr.Code)

	registerTestProvider(t, service, store, "provider-1", 200)
	_, svcErr = service.VerifyProvider(ctx, "provider-1")
	assert.Nil(t, svcErr)

	// Walk the chain past the credential expiry; the stored status still
	// reads verified but the read recomputes validity.
	sequencer.height = 200
	_, svcErr = service.VerifyProvider(ctx, "provider-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.CredentialsExpired, svcErr.Code)
	assert.Equal(t, model.VerificationStatusVerified, store.credentials["provider-1"].VerificationStatus)

	sequencer.height = 1
	_, suspendErr := service.SuspendProvider(ctx, testAdmin, "provider-1", model.SuspendProviderRequest{Reason: "license under review"})
	require.Nil(t, suspendErr)

	_, svcErr = service.VerifyProvider(ctx, "provider-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderSuspended, svcErr.Code)
}

func TestUpdateProviderCredentialsRefreshesWithoutHistoryEntry(t *testing.T) {
	service, store, _ := setupService(t)
	ctx := context.Background()
	registerTestProvider(t, service, store, "provider-1", 10000)
	store.types["board-certification"] = model.CredentialType{Type: "board-certification"}

	updated, svcErr := service.UpdateProviderCredentials(ctx, testAdmin, "provider-1", model.UpdateCredentialsRequest{
		ExpiresAtHeight: 20000,
		CredentialTypes: []string{"medical-license", "board-certification"},
	})
	require.Nil(t, svcErr)

	assert.Equal(t, int64(20000), updated.Credential.ExpiresAtHeight)
	assert.Equal(t, []string{"medical-license", "board-certification"}, updated.Credential.CredentialTypes)
	assert.Greater(t, updated.Credential.LastVerifiedHeight, int64(1))
	assert.Len(t, store.verifications["provider-1"], 1)
}

func TestUpdateProviderCredentialsUnknownProvider(t *testing.T) {
	service, store, _ := setupService(t)
	store.types["medical-license"] = model.CredentialType{Type: "medical-license"}

	_, svcErr := service.UpdateProviderCredentials(context.Background(), testAdmin, "missing", model.UpdateCredentialsRequest{
		ExpiresAtHeight: 20000,
		CredentialTypes: []string{"medical-license"},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotFound, svcErr.Code)
}

func TestSuspendAndReactivateProvider(t *testing.T) {
	service, store, _ := setupService(t)
	ctx := context.Background()
	registerTestProvider(t, service, store, "provider-1", 10000)

	suspended, svcErr := service.SuspendProvider(ctx, testAdmin, "provider-1", model.SuspendProviderRequest{Reason: "billing fraud investigation"})
	require.Nil(t, svcErr)
	assert.Equal(t, model.ProviderStatusSuspended, suspended.Status.Status)
	require.NotNil(t, store.credentials["provider-1"].SuspensionReason)
	assert.Equal(t, "billing fraud investigation", *store.credentials["provider-1"].SuspensionReason)

	reactivated, svcErr := service.ReactivateProvider(ctx, testAdmin, "provider-1")
	require.Nil(t, svcErr)
	assert.Equal(t, model.ProviderStatusActive, reactivated.Status.Status)
	assert.Nil(t, store.credentials["provider-1"].SuspensionReason)
}

func TestReactivateProviderRequiresSuspendedStatus(t *testing.T) {
	service, store, _ := setupService(t)
	registerTestProvider(t, service, store, "provider-1", 10000)

	_, svcErr := service.ReactivateProvider(context.Background(), testAdmin, "provider-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidCredentials, svcErr.Code)
}

func TestRecordProviderActivityGate(t *testing.T) {
	service, store, _ := setupService(t)
	ctx := context.Background()
	registerTestProvider(t, service, store, "provider-1", 10000)

	// Any identity other than the grant ledger component is rejected and
	// the status record is never touched.
	_, svcErr := service.RecordProviderActivity(ctx, "provider-1", "provider-1", 5)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.RegistryNotAuthorized, svcErr.Code)
	assert.Equal(t, int64(0), store.statuses["provider-1"].AccessCount)

	_, svcErr = service.RecordProviderActivity(ctx, testAdmin, "provider-1", 5)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.RegistryNotAuthorized, svcErr.Code)

	queries, svcErr := service.RecordProviderActivity(ctx, constants.GrantLedgerIdentity, "provider-1", 5)
	require.Nil(t, svcErr)
	for _, query := range queries {
		require.NoError(t, query(nil))
	}
	assert.Equal(t, int64(1), store.statuses["provider-1"].AccessCount)
	assert.Equal(t, int64(5), store.statuses["provider-1"].LastActivityHeight)
}

func TestRecordProviderActivityUnknownProvider(t *testing.T) {
	service, _, _ := setupService(t)

	_, svcErr := service.RecordProviderActivity(context.Background(), constants.GrantLedgerIdentity, "missing", 5)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotFound, svcErr.Code)
}

func TestHasCredentialType(t *testing.T) {
	service, store, _ := setupService(t)
	ctx := context.Background()
	registerTestProvider(t, service, store, "provider-1", 10000)

	has, svcErr := service.HasCredentialType(ctx, "provider-1", "medical-license")
	require.Nil(t, svcErr)
	assert.True(t, has)

	has, svcErr = service.HasCredentialType(ctx, "provider-1", "board-certification")
	require.Nil(t, svcErr)
	assert.False(t, has)

	_, svcErr = service.HasCredentialType(ctx, "missing", "medical-license")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.ProviderNotFound, svcErr.Code)
}

func TestAddCredentialTypeUpserts(t *testing.T) {
	service, store, _ := setupService(t)
	ctx := context.Background()

	created, svcErr := service.AddCredentialType(ctx, testAdmin, model.CredentialTypeRequest{
		Type:              "medical-license",
		Description:       "state medical license",
		RequiredForAccess: true,
	})
	require.Nil(t, svcErr)
	assert.Equal(t, int64(1), created.CreatedAtHeight)

	_, svcErr = service.AddCredentialType(ctx, testAdmin, model.CredentialTypeRequest{
		Type:        "medical-license",
		Description: "updated description",
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "updated description", store.types["medical-license"].Description)

	_, svcErr = service.AddCredentialType(ctx, "someone-else", model.CredentialTypeRequest{Type: "x"})
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.RegistryNotAuthorized, svcErr.Code)
}
