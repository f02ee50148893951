package backend

import (
	"context"

	"obra/internal/records"
	"obra/internal/status"
	"obra/internal/storage"
	"obra/internal/worker"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record store and optional cleanup function
type BackendResult struct {
	Store   records.Store
	Cleanup CleanupFunc
}

// JournalResult holds the transition journal wiring. Every field is nil
// when the journal is disabled.
type JournalResult struct {
	Repo      *storage.SQLiteRepository
	Publisher status.Publisher
	Cleanup   CleanupFunc

	// Worker is set when events are journaled in-process. Its Run loop
	// retries mirror writes that failed; with AMQP the worker process owns
	// that loop and Worker is nil.
	Worker *worker.JournalWorker
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the record store selected by config.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateJournal opens the journal and picks how events reach it.
	CreateJournal(ctx context.Context, config Config) (*JournalResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Notion specific
	NotionToken string

	// Memory specific; empty means start with no records
	SeedFile string

	// Journal; an empty path disables it
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Journal mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorBatchSize          int
}

// BackendType represents the type of record store
type BackendType string

const (
	NotionBackend BackendType = "notion"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case NotionBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
