package backend

import (
	"context"
	"fmt"

	"obra/internal/adapters"
	"obra/internal/amqp"
	"obra/internal/log"
	"obra/internal/records/memory"
	"obra/internal/records/notion"
	"obra/internal/sheets"
	gsheet "obra/internal/sheets/google"
	sheetsmem "obra/internal/sheets/memory"
	"obra/internal/storage"
	"obra/internal/worker"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.WithComponent(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NotionBackend:
		f.logger.InfoContext(ctx, "Initialized notion record store")
		return &BackendResult{Store: notion.New(config.NotionToken)}, nil
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.InfoContext(ctx, "Initialized empty memory record store")
		return &BackendResult{Store: memory.New()}, nil
	}
	store, err := memory.Load(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized memory record store", "seed_file", config.SeedFile)
	return &BackendResult{Store: store}, nil
}

// CreateJournal implements Factory.CreateJournal. With an AMQP URL events
// are published for the worker; otherwise, or when the broker is
// unreachable, they are journaled in-process.
func (f *DefaultFactory) CreateJournal(ctx context.Context, config Config) (*JournalResult, error) {
	if config.SQLiteDBPath == "" {
		f.logger.InfoContext(ctx, "Transition journal disabled")
		return &JournalResult{}, nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err == nil {
			f.logger.InfoContext(ctx, "Publishing transitions over AMQP",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			return &JournalResult{
				Repo:      repo,
				Publisher: client,
				Cleanup: func() error {
					client.Close()
					return repo.Close()
				},
			}, nil
		}
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, journaling in-process", log.FieldError, err)
	}

	mirror, err := NewMirror(ctx, config)
	if err != nil {
		repo.Close()
		return nil, err
	}
	w := worker.NewJournalWorker(repo, mirror, config.MirrorBatchSize)

	f.logger.InfoContext(ctx, "Journaling transitions in-process",
		"db_path", config.SQLiteDBPath,
		"mirror", fmt.Sprintf("%T", mirror))

	return &JournalResult{
		Repo:      repo,
		Publisher: adapters.NewJournalPublisher(w),
		Cleanup:   repo.Close,
		Worker:    w,
	}, nil
}

// NewMirror returns the Google Sheets mirror. Without a spreadsheet the
// memory backend gets an in-process mirror so demo runs exercise the whole
// pipeline; other backends get nil.
func NewMirror(ctx context.Context, config Config) (sheets.TransitionMirror, error) {
	if config.GoogleSpreadsheetID == "" {
		if config.Type == MemoryBackend {
			return sheetsmem.New(), nil
		}
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
	}
	return client, nil
}
