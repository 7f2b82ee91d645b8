// Package chain owns the ledger-wide block height and the single-writer
// transaction model. Every mutating core operation commits through Submit,
// which serializes writers, advances the height, and applies the operation's
// writes in one database transaction. Reads observe the height of the latest
// committed transaction.
package chain

import (
	"fmt"
	"sync"

	dbmodel "github.com/medledger/access-control-api/internal/system/database/model"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	"github.com/medledger/access-control-api/internal/system/log"
)

// Sequencer is the handle components use to read the current height and to
// commit atomic state transitions. The build callback receives the height at
// which the transition will commit, so operations can stamp it into records;
// it runs under the writer lock, so precondition reads inside it observe a
// stable snapshot. Returning an error from build aborts the transition with
// no state change.
type Sequencer interface {
	CurrentHeight() int64
	Submit(build func(height int64) ([]func(tx dbmodel.TxInterface) error, error)) (int64, error)
}

var (
	queryGetHeight = dbmodel.DBQuery{
		ID:    "GET_LEDGER_HEIGHT",
		Query: "SELECT HEIGHT FROM LEDGER_STATE WHERE ID = 1",
	}

	queryInitHeight = dbmodel.DBQuery{
		ID:    "INIT_LEDGER_HEIGHT",
		Query: "INSERT INTO LEDGER_STATE (ID, HEIGHT) VALUES (1, 0)",
	}

	queryAdvanceHeight = dbmodel.DBQuery{
		ID:    "ADVANCE_LEDGER_HEIGHT",
		Query: "UPDATE LEDGER_STATE SET HEIGHT = ? WHERE ID = 1",
	}
)

type sequencer struct {
	dbClient provider.DBClientInterface

	mu     sync.RWMutex
	height int64
}

// NewSequencer restores the persisted height and returns the process-wide
// sequencer. The height row is created on first start.
func NewSequencer(dbClient provider.DBClientInterface) (Sequencer, error) {
	s := &sequencer{dbClient: dbClient}

	rows, err := dbClient.Query(queryGetHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger height: %w", err)
	}

	if len(rows) == 0 {
		if _, err := dbClient.Execute(queryInitHeight); err != nil {
			return nil, fmt.Errorf("failed to initialize ledger height: %w", err)
		}
		s.height = 0
	} else {
		// The driver serves this unparameterized query over the text
		// protocol, so the column may arrive as text. A height that cannot
		// be read must stop startup: defaulting to 0 would replay the
		// entire chain's past.
		h, ok := provider.Int64Value(rows[0]["HEIGHT"])
		if !ok {
			return nil, fmt.Errorf("unreadable ledger height value %v", rows[0]["HEIGHT"])
		}
		s.height = h
	}

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Chain")).
		Info("Ledger sequencer initialized", log.Int64("height", s.height))

	return s, nil
}

// CurrentHeight returns the height of the latest committed transaction.
func (s *sequencer) CurrentHeight() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// Submit commits one atomic state transition at the next height. Writers are
// fully serialized: the operation's precondition reads and writes run under
// the sequencer lock, so no other writer can interleave. Any failure rolls
// the whole transition back and leaves the height unchanged.
func (s *sequencer) Submit(build func(height int64) ([]func(tx dbmodel.TxInterface) error, error)) (int64, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Chain"))

	s.mu.Lock()
	defer s.mu.Unlock()

	height := s.height + 1
	queries, err := build(height)
	if err != nil {
		logger.Debug("Ledger transition rejected by precondition", log.Error(err), log.Int64("height", height))
		return 0, err
	}

	tx, err := s.dbClient.BeginTx()
	if err != nil {
		logger.Error("Failed to begin ledger transaction", log.Error(err))
		return 0, err
	}

	for i, query := range queries {
		if err := query(tx); err != nil {
			logger.Warn("Ledger transaction aborted, rolling back",
				log.Error(err),
				log.Int("failed_query_index", i),
				log.Int64("height", height),
			)
			tx.Rollback()
			return 0, err
		}
	}

	if _, err := tx.Exec(queryAdvanceHeight.GetQuery(s.dbClient.DBType()), height); err != nil {
		logger.Error("Failed to advance ledger height", log.Error(err))
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit ledger transaction", log.Error(err))
		return 0, err
	}

	s.height = height
	logger.Debug("Ledger transaction committed", log.Int64("height", height))
	return height, nil
}
