package model

import (
	"database/sql"
)

// DBInterface defines the interface for database operations.
type DBInterface interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*sql.Tx, error)
	Close() error
}

// TxInterface defines the interface for transaction operations. Store write
// methods take a TxInterface so that a service can compose writes from
// several components into one atomic batch.
type TxInterface interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Commit() error
	Rollback() error
}

// Tx wraps sql.Tx to implement TxInterface.
type Tx struct {
	*sql.Tx
}

// NewTx creates a new Tx instance.
func NewTx(tx *sql.Tx) TxInterface {
	return &Tx{Tx: tx}
}
