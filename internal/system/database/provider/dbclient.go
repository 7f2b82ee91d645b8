package provider

import (
	"database/sql"
	"fmt"
	"strconv"

	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
)

// DBClientInterface is the handle stores use to talk to the database. Query
// results come back as generic rows so stores own their own mapping.
type DBClientInterface interface {
	Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error)
	BeginTx() (dbmodel.TxInterface, error)
	DBType() string
}

// Int64Value coerces an integer column out of a normalized row. The MySQL
// driver serves unparameterized queries over the text protocol, so integer
// columns can arrive as text rather than int64; mappers must accept both.
func Int64Value(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		return parsed, err == nil
	}
	return 0, false
}

type dbClient struct {
	db     dbmodel.DBInterface
	dbType string
}

// NewDBClient creates a database client over the given connection.
func NewDBClient(db dbmodel.DBInterface, dbType string) DBClientInterface {
	return &dbClient{
		db:     db,
		dbType: dbType,
	}
}

// Query runs a read query and materializes all rows.
func (c *dbClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.db.Query(query.GetQuery(c.dbType), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Execute runs a mutating statement outside any transaction.
func (c *dbClient) Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error) {
	result, err := c.db.Exec(query.GetQuery(c.dbType), args...)
	if err != nil {
		return nil, fmt.Errorf("execute %s failed: %w", query.GetID(), err)
	}
	return result, nil
}

// BeginTx starts a new transaction.
func (c *dbClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx), nil
}

// DBType returns the configured database type.
func (c *dbClient) DBType() string {
	return c.dbType
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// Normalize []byte columns to string so mappers see one type.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}
