package access

import (
	"context"
	"encoding/json"

	"github.com/medledger/access-control-api/internal/access/model"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/database/provider"
)

// DBQuery objects for consent and grant ledger operations
var (
	QueryCreateConsent = dbmodel.DBQuery{
		ID:    "CREATE_PATIENT_CONSENT",
		Query: "INSERT INTO PATIENT_CONSENT (PATIENT_ID, PROVIDER_ID, STATUS, RECORD_SCOPE, CONSENT_GIVEN_AT_HEIGHT, CONSENT_EXPIRY_HEIGHT, REVOKED_AT_HEIGHT, REVOKER_ID) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetConsentByPair = dbmodel.DBQuery{
		ID:    "GET_PATIENT_CONSENT",
		Query: "SELECT PATIENT_ID, PROVIDER_ID, STATUS, RECORD_SCOPE, CONSENT_GIVEN_AT_HEIGHT, CONSENT_EXPIRY_HEIGHT, REVOKED_AT_HEIGHT, REVOKER_ID FROM PATIENT_CONSENT WHERE PATIENT_ID = ? AND PROVIDER_ID = ?",
	}

	QueryRevokeConsent = dbmodel.DBQuery{
		ID:    "REVOKE_PATIENT_CONSENT",
		Query: "UPDATE PATIENT_CONSENT SET STATUS = ?, REVOKED_AT_HEIGHT = ?, REVOKER_ID = ? WHERE PATIENT_ID = ? AND PROVIDER_ID = ?",
	}

	QueryUpsertGrant = dbmodel.DBQuery{
		ID:            "UPSERT_ACCESS_GRANT",
		Query:         "INSERT INTO ACCESS_GRANT (PATIENT_ID, PROVIDER_ID, EXPIRY_HEIGHT, RECORD_SCOPE, GRANTED_AT_HEIGHT, GRANTER_ID, STATUS, MAX_ACCESSES, ACCESS_COUNT, LAST_ACCESSED_HEIGHT) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE EXPIRY_HEIGHT = VALUES(EXPIRY_HEIGHT), RECORD_SCOPE = VALUES(RECORD_SCOPE), GRANTED_AT_HEIGHT = VALUES(GRANTED_AT_HEIGHT), GRANTER_ID = VALUES(GRANTER_ID), STATUS = VALUES(STATUS), MAX_ACCESSES = VALUES(MAX_ACCESSES), ACCESS_COUNT = VALUES(ACCESS_COUNT), LAST_ACCESSED_HEIGHT = VALUES(LAST_ACCESSED_HEIGHT)",
		PostgresQuery: "INSERT INTO ACCESS_GRANT (PATIENT_ID, PROVIDER_ID, EXPIRY_HEIGHT, RECORD_SCOPE, GRANTED_AT_HEIGHT, GRANTER_ID, STATUS, MAX_ACCESSES, ACCESS_COUNT, LAST_ACCESSED_HEIGHT) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (PATIENT_ID, PROVIDER_ID) DO UPDATE SET EXPIRY_HEIGHT = EXCLUDED.EXPIRY_HEIGHT, RECORD_SCOPE = EXCLUDED.RECORD_SCOPE, GRANTED_AT_HEIGHT = EXCLUDED.GRANTED_AT_HEIGHT, GRANTER_ID = EXCLUDED.GRANTER_ID, STATUS = EXCLUDED.STATUS, MAX_ACCESSES = EXCLUDED.MAX_ACCESSES, ACCESS_COUNT = EXCLUDED.ACCESS_COUNT, LAST_ACCESSED_HEIGHT = EXCLUDED.LAST_ACCESSED_HEIGHT",
		SQLiteQuery:   "INSERT INTO ACCESS_GRANT (PATIENT_ID, PROVIDER_ID, EXPIRY_HEIGHT, RECORD_SCOPE, GRANTED_AT_HEIGHT, GRANTER_ID, STATUS, MAX_ACCESSES, ACCESS_COUNT, LAST_ACCESSED_HEIGHT) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (PATIENT_ID, PROVIDER_ID) DO UPDATE SET EXPIRY_HEIGHT = EXCLUDED.EXPIRY_HEIGHT, RECORD_SCOPE = EXCLUDED.RECORD_SCOPE, GRANTED_AT_HEIGHT = EXCLUDED.GRANTED_AT_HEIGHT, GRANTER_ID = EXCLUDED.GRANTER_ID, STATUS = EXCLUDED.STATUS, MAX_ACCESSES = EXCLUDED.MAX_ACCESSES, ACCESS_COUNT = EXCLUDED.ACCESS_COUNT, LAST_ACCESSED_HEIGHT = EXCLUDED.LAST_ACCESSED_HEIGHT",
	}

	QueryGetGrantByPair = dbmodel.DBQuery{
		ID:    "GET_ACCESS_GRANT",
		Query: "SELECT PATIENT_ID, PROVIDER_ID, EXPIRY_HEIGHT, RECORD_SCOPE, GRANTED_AT_HEIGHT, GRANTER_ID, STATUS, MAX_ACCESSES, ACCESS_COUNT, LAST_ACCESSED_HEIGHT FROM ACCESS_GRANT WHERE PATIENT_ID = ? AND PROVIDER_ID = ?",
	}

	QueryUpdateGrantUsage = dbmodel.DBQuery{
		ID:    "UPDATE_ACCESS_GRANT_USAGE",
		Query: "UPDATE ACCESS_GRANT SET ACCESS_COUNT = ?, LAST_ACCESSED_HEIGHT = ? WHERE PATIENT_ID = ? AND PROVIDER_ID = ?",
	}

	QueryUpdateGrantStatus = dbmodel.DBQuery{
		ID:    "UPDATE_ACCESS_GRANT_STATUS",
		Query: "UPDATE ACCESS_GRANT SET STATUS = ? WHERE PATIENT_ID = ? AND PROVIDER_ID = ?",
	}
)

// AccessStore defines the data operations of the consent and grant ledger.
type AccessStore interface {
	CreateConsent(tx dbmodel.TxInterface, consent *model.PatientConsent) error
	GetConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, error)
	RevokeConsent(tx dbmodel.TxInterface, patientID, providerID string, revokedAtHeight int64, revokerID string) error

	UpsertGrant(tx dbmodel.TxInterface, grant *model.AccessGrant) error
	GetGrant(ctx context.Context, patientID, providerID string) (*model.AccessGrant, error)
	UpdateGrantUsage(tx dbmodel.TxInterface, patientID, providerID string, accessCount, lastAccessedHeight int64) error
	UpdateGrantStatus(tx dbmodel.TxInterface, patientID, providerID, status string) error
}

// store implements the AccessStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newAccessStore creates a new consent and grant ledger store
func newAccessStore(dbClient provider.DBClientInterface) AccessStore {
	return &store{
		dbClient: dbClient,
	}
}

func (s *store) CreateConsent(tx dbmodel.TxInterface, consent *model.PatientConsent) error {
	scopeJSON, err := json.Marshal(consent.RecordScope)
	if err != nil {
		return err
	}
	_, err = tx.Exec(QueryCreateConsent.GetQuery(s.dbClient.DBType()),
		consent.PatientID, consent.ProviderID, consent.Status, string(scopeJSON),
		consent.ConsentGivenAtHeight, consent.ConsentExpiryHeight,
		consent.RevokedAtHeight, consent.RevokerID)
	return err
}

func (s *store) GetConsent(ctx context.Context, patientID, providerID string) (*model.PatientConsent, error) {
	rows, err := s.dbClient.Query(QueryGetConsentByPair, patientID, providerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToConsent(rows[0]), nil
}

func (s *store) RevokeConsent(tx dbmodel.TxInterface, patientID, providerID string, revokedAtHeight int64, revokerID string) error {
	_, err := tx.Exec(QueryRevokeConsent.GetQuery(s.dbClient.DBType()),
		model.ConsentStatusRevoked, revokedAtHeight, revokerID, patientID, providerID)
	return err
}

func (s *store) UpsertGrant(tx dbmodel.TxInterface, grant *model.AccessGrant) error {
	scopeJSON, err := json.Marshal(grant.RecordScope)
	if err != nil {
		return err
	}
	_, err = tx.Exec(QueryUpsertGrant.GetQuery(s.dbClient.DBType()),
		grant.PatientID, grant.ProviderID, grant.ExpiryHeight, string(scopeJSON),
		grant.GrantedAtHeight, grant.GranterID, grant.Status, grant.MaxAccesses,
		grant.AccessCount, grant.LastAccessedHeight)
	return err
}

func (s *store) GetGrant(ctx context.Context, patientID, providerID string) (*model.AccessGrant, error) {
	rows, err := s.dbClient.Query(QueryGetGrantByPair, patientID, providerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToGrant(rows[0]), nil
}

func (s *store) UpdateGrantUsage(tx dbmodel.TxInterface, patientID, providerID string, accessCount, lastAccessedHeight int64) error {
	_, err := tx.Exec(QueryUpdateGrantUsage.GetQuery(s.dbClient.DBType()),
		accessCount, lastAccessedHeight, patientID, providerID)
	return err
}

func (s *store) UpdateGrantStatus(tx dbmodel.TxInterface, patientID, providerID, status string) error {
	_, err := tx.Exec(QueryUpdateGrantStatus.GetQuery(s.dbClient.DBType()), status, patientID, providerID)
	return err
}

// Mapper functions

func mapToConsent(row map[string]interface{}) *model.PatientConsent {
	if row == nil {
		return nil
	}

	consent := &model.PatientConsent{}

	if patient, ok := row["PATIENT_ID"].(string); ok {
		consent.PatientID = patient
	}
	if provider, ok := row["PROVIDER_ID"].(string); ok {
		consent.ProviderID = provider
	}
	if status, ok := row["STATUS"].(string); ok {
		consent.Status = status
	}
	if scopeJSON, ok := row["RECORD_SCOPE"].(string); ok && scopeJSON != "" {
		_ = json.Unmarshal([]byte(scopeJSON), &consent.RecordScope)
	}
	if given, ok := provider.Int64Value(row["CONSENT_GIVEN_AT_HEIGHT"]); ok {
		consent.ConsentGivenAtHeight = given
	}
	if expiry, ok := provider.Int64Value(row["CONSENT_EXPIRY_HEIGHT"]); ok {
		consent.ConsentExpiryHeight = &expiry
	}
	if revoked, ok := provider.Int64Value(row["REVOKED_AT_HEIGHT"]); ok {
		consent.RevokedAtHeight = &revoked
	}
	if revoker, ok := row["REVOKER_ID"].(string); ok {
		consent.RevokerID = &revoker
	}

	return consent
}

func mapToGrant(row map[string]interface{}) *model.AccessGrant {
	if row == nil {
		return nil
	}

	grant := &model.AccessGrant{}

	if patient, ok := row["PATIENT_ID"].(string); ok {
		grant.PatientID = patient
	}
	if provider, ok := row["PROVIDER_ID"].(string); ok {
		grant.ProviderID = provider
	}
	if expiry, ok := provider.Int64Value(row["EXPIRY_HEIGHT"]); ok {
		grant.ExpiryHeight = expiry
	}
	if scopeJSON, ok := row["RECORD_SCOPE"].(string); ok && scopeJSON != "" {
		_ = json.Unmarshal([]byte(scopeJSON), &grant.RecordScope)
	}
	if granted, ok := provider.Int64Value(row["GRANTED_AT_HEIGHT"]); ok {
		grant.GrantedAtHeight = granted
	}
	if granter, ok := row["GRANTER_ID"].(string); ok {
		grant.GranterID = granter
	}
	if status, ok := row["STATUS"].(string); ok {
		grant.Status = status
	}
	if max, ok := provider.Int64Value(row["MAX_ACCESSES"]); ok {
		grant.MaxAccesses = &max
	}
	if count, ok := provider.Int64Value(row["ACCESS_COUNT"]); ok {
		grant.AccessCount = count
	}
	if accessed, ok := provider.Int64Value(row["LAST_ACCESSED_HEIGHT"]); ok {
		grant.LastAccessedHeight = &accessed
	}

	return grant
}
