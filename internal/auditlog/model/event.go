package model

// AuditEvent represents the AUDIT_EVENT table. Append-only; events are never
// mutated or deleted.
type AuditEvent struct {
	EventID      string   `db:"EVENT_ID" json:"eventId"`
	PatientID    string   `db:"PATIENT_ID" json:"patientId"`
	ProviderID   string   `db:"PROVIDER_ID" json:"providerId"`
	EventType    string   `db:"EVENT_TYPE" json:"eventType"`
	RecordHeight int64    `db:"RECORD_HEIGHT" json:"recordHeight"`
	RecordScope  []string `db:"-" json:"recordScope"`
	Details      *string  `db:"DETAILS" json:"details,omitempty"`
}

// LogEventRequest is the payload of the gated logEvent entry point. It is
// never exposed over HTTP; only the grant ledger constructs it.
type LogEventRequest struct {
	EventID     string
	PatientID   string
	ProviderID  string
	EventType   string
	RecordScope []string
	Details     *string
}

// AuditTrailResponse reports the running event count for a patient.
type AuditTrailResponse struct {
	PatientID  string `json:"patientId"`
	EventCount int64  `json:"eventCount"`
}

// PatientEventIDResponse maps a position in a patient's history back to an
// event id.
type PatientEventIDResponse struct {
	PatientID      string `json:"patientId"`
	SequenceNumber int64  `json:"sequenceNumber"`
	EventID        string `json:"eventId"`
}

// PatientEventsResponse is a page of a patient's events in sequence order.
type PatientEventsResponse struct {
	Data       []AuditEvent `json:"data"`
	TotalCount int64        `json:"totalCount"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
