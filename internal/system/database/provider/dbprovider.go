// Package provider provides functionality for managing database connections
// and clients.
package provider

import (
	"sync"

	"github.com/medledger/access-control-api/internal/system/database"
	"github.com/medledger/access-control-api/internal/system/log"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetLedgerDBClient() (DBClientInterface, error)
}

// dbProvider is the implementation of DBProviderInterface.
type dbProvider struct {
	ledgerClient DBClientInterface
	ledgerMutex  sync.RWMutex
	db           *database.DB
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the
// database connection.
func InitDBProvider(db *database.DB, dbType string) {
	once.Do(func() {
		instance = &dbProvider{
			db: db,
		}
		instance.initializeClient(dbType)
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetLedgerDBClient returns a database client for the ledger datasource.
// The returned client manages no connections of its own; the pool belongs to
// the underlying database.DB.
func (d *dbProvider) GetLedgerDBClient() (DBClientInterface, error) {
	d.ledgerMutex.RLock()
	defer d.ledgerMutex.RUnlock()
	return d.ledgerClient, nil
}

func (d *dbProvider) initializeClient(dbType string) {
	d.ledgerMutex.Lock()
	defer d.ledgerMutex.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))

	if d.db == nil {
		logger.Fatal("Database connection is nil")
		return
	}

	d.ledgerClient = NewDBClient(d.db.DB.DB, dbType)
	logger.Debug("Ledger DB client initialized", log.String("db_type", dbType))
}
