package auditlog

import (
	"context"
	"encoding/json"

	"github.com/medledger/access-control-api/internal/auditlog/model"
	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/database/provider"
)

// DBQuery objects for audit log operations
var (
	QueryCreateEvent = dbmodel.DBQuery{
		ID:    "CREATE_AUDIT_EVENT",
		Query: "INSERT INTO AUDIT_EVENT (EVENT_ID, PATIENT_ID, PROVIDER_ID, EVENT_TYPE, RECORD_HEIGHT, RECORD_SCOPE, DETAILS) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetEventByID = dbmodel.DBQuery{
		ID:    "GET_AUDIT_EVENT",
		Query: "SELECT EVENT_ID, PATIENT_ID, PROVIDER_ID, EVENT_TYPE, RECORD_HEIGHT, RECORD_SCOPE, DETAILS FROM AUDIT_EVENT WHERE EVENT_ID = ?",
	}

	QueryCreateIndexEntry = dbmodel.DBQuery{
		ID:    "CREATE_PATIENT_EVENT_INDEX_ENTRY",
		Query: "INSERT INTO PATIENT_EVENT_INDEX (PATIENT_ID, SEQUENCE_NUMBER, EVENT_ID) VALUES (?, ?, ?)",
	}

	QueryGetEventIDBySequence = dbmodel.DBQuery{
		ID:    "GET_PATIENT_EVENT_ID",
		Query: "SELECT EVENT_ID FROM PATIENT_EVENT_INDEX WHERE PATIENT_ID = ? AND SEQUENCE_NUMBER = ?",
	}

	QueryGetEventCount = dbmodel.DBQuery{
		ID:    "GET_PATIENT_EVENT_COUNT",
		Query: "SELECT EVENT_COUNT FROM PATIENT_EVENT_COUNT WHERE PATIENT_ID = ?",
	}

	QueryUpsertEventCount = dbmodel.DBQuery{
		ID:            "UPSERT_PATIENT_EVENT_COUNT",
		Query:         "INSERT INTO PATIENT_EVENT_COUNT (PATIENT_ID, EVENT_COUNT) VALUES (?, ?) ON DUPLICATE KEY UPDATE EVENT_COUNT = VALUES(EVENT_COUNT)",
		PostgresQuery: "INSERT INTO PATIENT_EVENT_COUNT (PATIENT_ID, EVENT_COUNT) VALUES (?, ?) ON CONFLICT (PATIENT_ID) DO UPDATE SET EVENT_COUNT = EXCLUDED.EVENT_COUNT",
		SQLiteQuery:   "INSERT INTO PATIENT_EVENT_COUNT (PATIENT_ID, EVENT_COUNT) VALUES (?, ?) ON CONFLICT (PATIENT_ID) DO UPDATE SET EVENT_COUNT = EXCLUDED.EVENT_COUNT",
	}

	QueryGetEventsByPatient = dbmodel.DBQuery{
		ID:    "GET_PATIENT_EVENTS",
		Query: "SELECT E.EVENT_ID, E.PATIENT_ID, E.PROVIDER_ID, E.EVENT_TYPE, E.RECORD_HEIGHT, E.RECORD_SCOPE, E.DETAILS FROM AUDIT_EVENT E INNER JOIN PATIENT_EVENT_INDEX I ON E.EVENT_ID = I.EVENT_ID WHERE I.PATIENT_ID = ? ORDER BY I.SEQUENCE_NUMBER LIMIT ? OFFSET ?",
	}
)

// AuditStore defines the data operations of the audit log. The event store,
// the per-patient index, and the running count are always written together
// in one ledger transaction.
type AuditStore interface {
	CreateEvent(tx dbmodel.TxInterface, event *model.AuditEvent) error
	GetEvent(ctx context.Context, eventID string) (*model.AuditEvent, error)
	CreateIndexEntry(tx dbmodel.TxInterface, patientID string, sequenceNumber int64, eventID string) error
	GetEventIDBySequence(ctx context.Context, patientID string, sequenceNumber int64) (string, error)
	GetEventCount(ctx context.Context, patientID string) (int64, error)
	UpsertEventCount(tx dbmodel.TxInterface, patientID string, count int64) error
	GetEventsByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.AuditEvent, error)
}

// store implements the AuditStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newAuditStore creates a new audit log store
func newAuditStore(dbClient provider.DBClientInterface) AuditStore {
	return &store{
		dbClient: dbClient,
	}
}

func (s *store) CreateEvent(tx dbmodel.TxInterface, event *model.AuditEvent) error {
	scopeJSON, err := json.Marshal(event.RecordScope)
	if err != nil {
		return err
	}
	_, err = tx.Exec(QueryCreateEvent.GetQuery(s.dbClient.DBType()),
		event.EventID, event.PatientID, event.ProviderID, event.EventType,
		event.RecordHeight, string(scopeJSON), event.Details)
	return err
}

func (s *store) GetEvent(ctx context.Context, eventID string) (*model.AuditEvent, error) {
	rows, err := s.dbClient.Query(QueryGetEventByID, eventID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToEvent(rows[0]), nil
}

func (s *store) CreateIndexEntry(tx dbmodel.TxInterface, patientID string, sequenceNumber int64, eventID string) error {
	_, err := tx.Exec(QueryCreateIndexEntry.GetQuery(s.dbClient.DBType()), patientID, sequenceNumber, eventID)
	return err
}

func (s *store) GetEventIDBySequence(ctx context.Context, patientID string, sequenceNumber int64) (string, error) {
	rows, err := s.dbClient.Query(QueryGetEventIDBySequence, patientID, sequenceNumber)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	if id, ok := rows[0]["EVENT_ID"].(string); ok {
		return id, nil
	}
	return "", nil
}

func (s *store) GetEventCount(ctx context.Context, patientID string) (int64, error) {
	rows, err := s.dbClient.Query(QueryGetEventCount, patientID)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if count, ok := provider.Int64Value(rows[0]["EVENT_COUNT"]); ok {
		return count, nil
	}
	return 0, nil
}

func (s *store) UpsertEventCount(tx dbmodel.TxInterface, patientID string, count int64) error {
	_, err := tx.Exec(QueryUpsertEventCount.GetQuery(s.dbClient.DBType()), patientID, count)
	return err
}

func (s *store) GetEventsByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.AuditEvent, error) {
	rows, err := s.dbClient.Query(QueryGetEventsByPatient, patientID, limit, offset)
	if err != nil {
		return nil, err
	}

	events := make([]model.AuditEvent, 0, len(rows))
	for _, row := range rows {
		if e := mapToEvent(row); e != nil {
			events = append(events, *e)
		}
	}
	return events, nil
}

// Mapper functions

func mapToEvent(row map[string]interface{}) *model.AuditEvent {
	if row == nil {
		return nil
	}

	event := &model.AuditEvent{}

	if id, ok := row["EVENT_ID"].(string); ok {
		event.EventID = id
	}
	if patient, ok := row["PATIENT_ID"].(string); ok {
		event.PatientID = patient
	}
	if provider, ok := row["PROVIDER_ID"].(string); ok {
		event.ProviderID = provider
	}
	if eventType, ok := row["EVENT_TYPE"].(string); ok {
		event.EventType = eventType
	}
	if height, ok := provider.Int64Value(row["RECORD_HEIGHT"]); ok {
		event.RecordHeight = height
	}
	if scopeJSON, ok := row["RECORD_SCOPE"].(string); ok && scopeJSON != "" {
		_ = json.Unmarshal([]byte(scopeJSON), &event.RecordScope)
	}
	if details, ok := row["DETAILS"].(string); ok {
		event.Details = &details
	}

	return event
}
