package model

// DBQuery pairs a stable identifier with the SQL for an operation. The
// default text is MySQL; database-specific variants are consulted first when
// present so the same store works against PostgreSQL or SQLite.
type DBQuery struct {
	ID            string `json:"id"`
	Query         string `json:"query"`
	PostgresQuery string `json:"postgres_query,omitempty"`
	SQLiteQuery   string `json:"sqlite_query,omitempty"`
}

// GetID returns the unique identifier for the query.
func (d *DBQuery) GetID() string {
	return d.ID
}

// GetQuery returns the appropriate query text for the given database type,
// falling back to the default (MySQL) text.
func (d *DBQuery) GetQuery(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		if d.PostgresQuery != "" {
			return d.PostgresQuery
		}
	case "sqlite", "sqlite3":
		if d.SQLiteQuery != "" {
			return d.SQLiteQuery
		}
	}
	return d.Query
}
