package credential

import (
	"context"
	"encoding/json"

	"github.com/medledger/access-control-api/internal/credential/model"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/database/provider"
)

// DBQuery objects for credential registry operations
var (
	QueryCreateCredential = dbmodel.DBQuery{
		ID:    "CREATE_PROVIDER_CREDENTIAL",
		Query: "INSERT INTO PROVIDER_CREDENTIAL (PROVIDER_ID, LICENSE_NUMBER, CREDENTIAL_TYPES, ISSUED_AT_HEIGHT, EXPIRES_AT_HEIGHT, ISSUING_AUTHORITY, VERIFICATION_STATUS, LAST_VERIFIED_HEIGHT, SUSPENSION_REASON) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetCredentialByProviderID = dbmodel.DBQuery{
		ID:    "GET_PROVIDER_CREDENTIAL",
		Query: "SELECT PROVIDER_ID, LICENSE_NUMBER, CREDENTIAL_TYPES, ISSUED_AT_HEIGHT, EXPIRES_AT_HEIGHT, ISSUING_AUTHORITY, VERIFICATION_STATUS, LAST_VERIFIED_HEIGHT, SUSPENSION_REASON FROM PROVIDER_CREDENTIAL WHERE PROVIDER_ID = ?",
	}

	QueryUpdateCredential = dbmodel.DBQuery{
		ID:    "UPDATE_PROVIDER_CREDENTIAL",
		Query: "UPDATE PROVIDER_CREDENTIAL SET CREDENTIAL_TYPES = ?, EXPIRES_AT_HEIGHT = ?, LAST_VERIFIED_HEIGHT = ? WHERE PROVIDER_ID = ?",
	}

	QueryUpdateSuspensionReason = dbmodel.DBQuery{
		ID:    "UPDATE_SUSPENSION_REASON",
		Query: "UPDATE PROVIDER_CREDENTIAL SET SUSPENSION_REASON = ? WHERE PROVIDER_ID = ?",
	}

	QueryCreateStatus = dbmodel.DBQuery{
		ID:    "CREATE_PROVIDER_STATUS",
		Query: "INSERT INTO PROVIDER_STATUS (PROVIDER_ID, REGISTRATION_HEIGHT, LAST_ACTIVITY_HEIGHT, ACCESS_COUNT, STATUS, LAST_UPDATED_BY) VALUES (?, ?, ?, ?, ?, ?)",
	}

	QueryGetStatusByProviderID = dbmodel.DBQuery{
		ID:    "GET_PROVIDER_STATUS",
		Query: "SELECT PROVIDER_ID, REGISTRATION_HEIGHT, LAST_ACTIVITY_HEIGHT, ACCESS_COUNT, STATUS, LAST_UPDATED_BY FROM PROVIDER_STATUS WHERE PROVIDER_ID = ?",
	}

	QueryUpdateStatusState = dbmodel.DBQuery{
		ID:    "UPDATE_PROVIDER_STATUS_STATE",
		Query: "UPDATE PROVIDER_STATUS SET STATUS = ?, LAST_UPDATED_BY = ? WHERE PROVIDER_ID = ?",
	}

	QueryRecordActivity = dbmodel.DBQuery{
		ID:    "RECORD_PROVIDER_ACTIVITY",
		Query: "UPDATE PROVIDER_STATUS SET ACCESS_COUNT = ACCESS_COUNT + 1, LAST_ACTIVITY_HEIGHT = ? WHERE PROVIDER_ID = ?",
	}

	QueryUpsertCredentialType = dbmodel.DBQuery{
		ID:            "UPSERT_CREDENTIAL_TYPE",
		Query:         "INSERT INTO VALID_CREDENTIAL_TYPE (CREDENTIAL_TYPE, DESCRIPTION, REQUIRED_FOR_ACCESS, CREATED_AT_HEIGHT) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE DESCRIPTION = VALUES(DESCRIPTION), REQUIRED_FOR_ACCESS = VALUES(REQUIRED_FOR_ACCESS)",
		PostgresQuery: "INSERT INTO VALID_CREDENTIAL_TYPE (CREDENTIAL_TYPE, DESCRIPTION, REQUIRED_FOR_ACCESS, CREATED_AT_HEIGHT) VALUES (?, ?, ?, ?) ON CONFLICT (CREDENTIAL_TYPE) DO UPDATE SET DESCRIPTION = EXCLUDED.DESCRIPTION, REQUIRED_FOR_ACCESS = EXCLUDED.REQUIRED_FOR_ACCESS",
		SQLiteQuery:   "INSERT INTO VALID_CREDENTIAL_TYPE (CREDENTIAL_TYPE, DESCRIPTION, REQUIRED_FOR_ACCESS, CREATED_AT_HEIGHT) VALUES (?, ?, ?, ?) ON CONFLICT (CREDENTIAL_TYPE) DO UPDATE SET DESCRIPTION = EXCLUDED.DESCRIPTION, REQUIRED_FOR_ACCESS = EXCLUDED.REQUIRED_FOR_ACCESS",
	}

	QueryGetCredentialType = dbmodel.DBQuery{
		ID:    "GET_CREDENTIAL_TYPE",
		Query: "SELECT CREDENTIAL_TYPE, DESCRIPTION, REQUIRED_FOR_ACCESS, CREATED_AT_HEIGHT FROM VALID_CREDENTIAL_TYPE WHERE CREDENTIAL_TYPE = ?",
	}

	QueryListCredentialTypes = dbmodel.DBQuery{
		ID:    "LIST_CREDENTIAL_TYPES",
		Query: "SELECT CREDENTIAL_TYPE, DESCRIPTION, REQUIRED_FOR_ACCESS, CREATED_AT_HEIGHT FROM VALID_CREDENTIAL_TYPE ORDER BY CREDENTIAL_TYPE",
	}

	QueryCreateVerification = dbmodel.DBQuery{
		ID:    "CREATE_CREDENTIAL_VERIFICATION",
		Query: "INSERT INTO CREDENTIAL_VERIFICATION (PROVIDER_ID, VERIFICATION_ID, VERIFIER_ID, VERIFICATION_HEIGHT, CREDENTIAL_HASH, RESULT, NOTES) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetVerificationsByProviderID = dbmodel.DBQuery{
		ID:    "GET_CREDENTIAL_VERIFICATIONS",
		Query: "SELECT PROVIDER_ID, VERIFICATION_ID, VERIFIER_ID, VERIFICATION_HEIGHT, CREDENTIAL_HASH, RESULT, NOTES FROM CREDENTIAL_VERIFICATION WHERE PROVIDER_ID = ? ORDER BY VERIFICATION_HEIGHT",
	}
)

// CredentialStore defines the data operations of the credential registry.
// Exported so the access ledger's Initialize can hand the store to the
// registry service it composes with.
type CredentialStore interface {
	CreateCredential(tx dbmodel.TxInterface, credential *model.ProviderCredential) error
	GetCredential(ctx context.Context, providerID string) (*model.ProviderCredential, error)
	UpdateCredential(tx dbmodel.TxInterface, credential *model.ProviderCredential) error
	UpdateSuspensionReason(tx dbmodel.TxInterface, providerID string, reason *string) error

	CreateStatus(tx dbmodel.TxInterface, status *model.ProviderStatus) error
	GetStatus(ctx context.Context, providerID string) (*model.ProviderStatus, error)
	UpdateStatusState(tx dbmodel.TxInterface, providerID, status, updatedBy string) error
	RecordActivity(tx dbmodel.TxInterface, providerID string, height int64) error

	UpsertCredentialType(tx dbmodel.TxInterface, credentialType *model.CredentialType) error
	GetCredentialType(ctx context.Context, credentialType string) (*model.CredentialType, error)
	ListCredentialTypes(ctx context.Context) ([]model.CredentialType, error)

	CreateVerification(tx dbmodel.TxInterface, verification *model.CredentialVerification) error
	GetVerificationsByProviderID(ctx context.Context, providerID string) ([]model.CredentialVerification, error)
}

// store implements the CredentialStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newCredentialStore creates a new credential registry store
func newCredentialStore(dbClient provider.DBClientInterface) CredentialStore {
	return &store{
		dbClient: dbClient,
	}
}

func (s *store) CreateCredential(tx dbmodel.TxInterface, credential *model.ProviderCredential) error {
	typesJSON, err := json.Marshal(credential.CredentialTypes)
	if err != nil {
		return err
	}
	_, err = tx.Exec(QueryCreateCredential.GetQuery(s.dbClient.DBType()),
		credential.ProviderID, credential.LicenseNumber, string(typesJSON),
		credential.IssuedAtHeight, credential.ExpiresAtHeight, credential.IssuingAuthority,
		credential.VerificationStatus, credential.LastVerifiedHeight, credential.SuspensionReason)
	return err
}

func (s *store) GetCredential(ctx context.Context, providerID string) (*model.ProviderCredential, error) {
	rows, err := s.dbClient.Query(QueryGetCredentialByProviderID, providerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToCredential(rows[0]), nil
}

func (s *store) UpdateCredential(tx dbmodel.TxInterface, credential *model.ProviderCredential) error {
	typesJSON, err := json.Marshal(credential.CredentialTypes)
	if err != nil {
		return err
	}
	_, err = tx.Exec(QueryUpdateCredential.GetQuery(s.dbClient.DBType()),
		string(typesJSON), credential.ExpiresAtHeight, credential.LastVerifiedHeight,
		credential.ProviderID)
	return err
}

func (s *store) UpdateSuspensionReason(tx dbmodel.TxInterface, providerID string, reason *string) error {
	_, err := tx.Exec(QueryUpdateSuspensionReason.GetQuery(s.dbClient.DBType()), reason, providerID)
	return err
}

func (s *store) CreateStatus(tx dbmodel.TxInterface, status *model.ProviderStatus) error {
	_, err := tx.Exec(QueryCreateStatus.GetQuery(s.dbClient.DBType()),
		status.ProviderID, status.RegistrationHeight, status.LastActivityHeight,
		status.AccessCount, status.Status, status.LastUpdatedBy)
	return err
}

func (s *store) GetStatus(ctx context.Context, providerID string) (*model.ProviderStatus, error) {
	rows, err := s.dbClient.Query(QueryGetStatusByProviderID, providerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToStatus(rows[0]), nil
}

func (s *store) UpdateStatusState(tx dbmodel.TxInterface, providerID, status, updatedBy string) error {
	_, err := tx.Exec(QueryUpdateStatusState.GetQuery(s.dbClient.DBType()), status, updatedBy, providerID)
	return err
}

func (s *store) RecordActivity(tx dbmodel.TxInterface, providerID string, height int64) error {
	_, err := tx.Exec(QueryRecordActivity.GetQuery(s.dbClient.DBType()), height, providerID)
	return err
}

func (s *store) UpsertCredentialType(tx dbmodel.TxInterface, credentialType *model.CredentialType) error {
	_, err := tx.Exec(QueryUpsertCredentialType.GetQuery(s.dbClient.DBType()),
		credentialType.Type, credentialType.Description, credentialType.RequiredForAccess,
		credentialType.CreatedAtHeight)
	return err
}

func (s *store) GetCredentialType(ctx context.Context, credentialType string) (*model.CredentialType, error) {
	rows, err := s.dbClient.Query(QueryGetCredentialType, credentialType)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToCredentialType(rows[0]), nil
}

func (s *store) ListCredentialTypes(ctx context.Context) ([]model.CredentialType, error) {
	rows, err := s.dbClient.Query(QueryListCredentialTypes)
	if err != nil {
		return nil, err
	}

	types := make([]model.CredentialType, 0, len(rows))
	for _, row := range rows {
		if t := mapToCredentialType(row); t != nil {
			types = append(types, *t)
		}
	}
	return types, nil
}

func (s *store) CreateVerification(tx dbmodel.TxInterface, verification *model.CredentialVerification) error {
	_, err := tx.Exec(QueryCreateVerification.GetQuery(s.dbClient.DBType()),
		verification.ProviderID, verification.VerificationID, verification.VerifierID,
		verification.VerificationHeight, verification.CredentialHash, verification.Result,
		verification.Notes)
	return err
}

func (s *store) GetVerificationsByProviderID(ctx context.Context, providerID string) ([]model.CredentialVerification, error) {
	rows, err := s.dbClient.Query(QueryGetVerificationsByProviderID, providerID)
	if err != nil {
		return nil, err
	}

	verifications := make([]model.CredentialVerification, 0, len(rows))
	for _, row := range rows {
		if v := mapToVerification(row); v != nil {
			verifications = append(verifications, *v)
		}
	}
	return verifications, nil
}

// Mapper functions

func mapToCredential(row map[string]interface{}) *model.ProviderCredential {
	if row == nil {
		return nil
	}

	credential := &model.ProviderCredential{}

	if id, ok := row["PROVIDER_ID"].(string); ok {
		credential.ProviderID = id
	}
	if license, ok := row["LICENSE_NUMBER"].(string); ok {
		credential.LicenseNumber = license
	}
	if typesJSON, ok := row["CREDENTIAL_TYPES"].(string); ok && typesJSON != "" {
		_ = json.Unmarshal([]byte(typesJSON), &credential.CredentialTypes)
	}
	if issued, ok := provider.Int64Value(row["ISSUED_AT_HEIGHT"]); ok {
		credential.IssuedAtHeight = issued
	}
	if expires, ok := provider.Int64Value(row["EXPIRES_AT_HEIGHT"]); ok {
		credential.ExpiresAtHeight = expires
	}
	if authority, ok := row["ISSUING_AUTHORITY"].(string); ok {
		credential.IssuingAuthority = authority
	}
	if status, ok := row["VERIFICATION_STATUS"].(string); ok {
		credential.VerificationStatus = status
	}
	if verified, ok := provider.Int64Value(row["LAST_VERIFIED_HEIGHT"]); ok {
		credential.LastVerifiedHeight = verified
	}
	if reason, ok := row["SUSPENSION_REASON"].(string); ok {
		credential.SuspensionReason = &reason
	}

	return credential
}

func mapToStatus(row map[string]interface{}) *model.ProviderStatus {
	if row == nil {
		return nil
	}

	status := &model.ProviderStatus{}

	if id, ok := row["PROVIDER_ID"].(string); ok {
		status.ProviderID = id
	}
	if registered, ok := provider.Int64Value(row["REGISTRATION_HEIGHT"]); ok {
		status.RegistrationHeight = registered
	}
	if activity, ok := provider.Int64Value(row["LAST_ACTIVITY_HEIGHT"]); ok {
		status.LastActivityHeight = activity
	}
	if count, ok := provider.Int64Value(row["ACCESS_COUNT"]); ok {
		status.AccessCount = count
	}
	if state, ok := row["STATUS"].(string); ok {
		status.Status = state
	}
	if updatedBy, ok := row["LAST_UPDATED_BY"].(string); ok {
		status.LastUpdatedBy = updatedBy
	}

	return status
}

func mapToCredentialType(row map[string]interface{}) *model.CredentialType {
	if row == nil {
		return nil
	}

	credentialType := &model.CredentialType{}

	if t, ok := row["CREDENTIAL_TYPE"].(string); ok {
		credentialType.Type = t
	}
	if description, ok := row["DESCRIPTION"].(string); ok {
		credentialType.Description = description
	}
	credentialType.RequiredForAccess = mapToBool(row["REQUIRED_FOR_ACCESS"])
	if created, ok := provider.Int64Value(row["CREATED_AT_HEIGHT"]); ok {
		credentialType.CreatedAtHeight = created
	}

	return credentialType
}

func mapToVerification(row map[string]interface{}) *model.CredentialVerification {
	if row == nil {
		return nil
	}

	verification := &model.CredentialVerification{}

	if id, ok := row["PROVIDER_ID"].(string); ok {
		verification.ProviderID = id
	}
	if vid, ok := row["VERIFICATION_ID"].(string); ok {
		verification.VerificationID = vid
	}
	if verifier, ok := row["VERIFIER_ID"].(string); ok {
		verification.VerifierID = verifier
	}
	if height, ok := provider.Int64Value(row["VERIFICATION_HEIGHT"]); ok {
		verification.VerificationHeight = height
	}
	if hash, ok := row["CREDENTIAL_HASH"].(string); ok {
		verification.CredentialHash = hash
	}
	if result, ok := row["RESULT"].(string); ok {
		verification.Result = result
	}
	if notes, ok := row["NOTES"].(string); ok {
		verification.Notes = &notes
	}

	return verification
}

// mapToBool normalizes the driver-dependent representations of a BOOLEAN
// column (TINYINT, native bool, or stringified digit).
func mapToBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return v == "1" || v == "true"
	default:
		return false
	}
}
