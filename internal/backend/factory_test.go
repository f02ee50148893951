package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/records/memory"
	"obra/internal/records/notion"
	sheetsmem "obra/internal/sheets/memory"
	"obra/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "notion",
		NotionToken:  "secret_x",
		SQLiteDBPath: "data/obra.db",
		AMQPQueue:    "q",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != NotionBackend || cfg.NotionToken != "secret_x" || cfg.AMQPQueue != "q" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"notion without token", Config{Type: NotionBackend}, "notion token"},
		{"amqp without journal", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost"}, "journal database path"},
		{"mirror without credentials", Config{Type: MemoryBackend, GoogleSpreadsheetID: "sid"}, "service account"},
		{"bad type", Config{Type: "sqlite"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: NotionBackend, NotionToken: "secret_x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Store.(*notion.Client); !ok {
		t.Errorf("store = %T, want *notion.Client", res.Store)
	}

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Store.(*memory.Store); !ok {
		t.Errorf("store = %T, want *memory.Store", res.Store)
	}

	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(`{"db1": [{"object": "page", "id": "1f2e3d4c-5b6a-7980-1a2b-3c4d5e6f7a8b", "properties": {}}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := res.Store.Get(ctx, "1f2e3d4c-5b6a-7980-1a2b-3c4d5e6f7a8b"); err != nil {
		t.Errorf("seeded page missing: %v", err)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed + ".missing"}); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestCreateJournal(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateJournal(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	if res.Repo != nil || res.Publisher != nil || res.Worker != nil {
		t.Fatalf("journal should be disabled: %+v", res)
	}

	path := filepath.Join(t.TempDir(), "journal", "obra.db")
	res, err = f.CreateJournal(ctx, Config{Type: MemoryBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	ev := core.TransitionEvent{ID: "ev-1", PageID: "p", Field: "Status", Value: "Reimbursed", OccurredAt: time.Now()}
	if err := res.Publisher.PublishTransition(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if _, err := res.Repo.GetTransition(ctx, "ev-1"); err != nil {
		t.Errorf("event not journaled: %v", err)
	}
}

func TestCreateJournalRetriesUnmirroredRows(t *testing.T) {
	f := NewFactory(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "obra.db")
	res, err := f.CreateJournal(ctx, Config{Type: MemoryBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()
	if res.Worker == nil {
		t.Fatal("in-process journal should expose its worker")
	}

	// A row journaled without reaching the mirror, as after a failed append.
	ev := core.TransitionEvent{ID: "ev-2", PageID: "p", Field: "Status", Value: "Reimbursed", OccurredAt: time.Now()}
	if _, err := res.Repo.RecordTransition(ctx, ev); err != nil {
		t.Fatal(err)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		res.Worker.Run(ctx, time.Hour)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		row, err := res.Repo.GetTransition(ctx, "ev-2")
		if err != nil {
			t.Fatal(err)
		}
		if row.MirrorStatus == storage.MirrorDone {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("row still %q after the mirror pass", row.MirrorStatus)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-stopped
}

func TestNewMirror(t *testing.T) {
	ctx := context.Background()

	m, err := NewMirror(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(*sheetsmem.Mirror); !ok {
		t.Errorf("memory backend mirror = %T, want *memory.Mirror", m)
	}

	m, err = NewMirror(ctx, Config{Type: NotionBackend, NotionToken: "secret_x"})
	if err != nil || m != nil {
		t.Errorf("notion backend without spreadsheet = %v, %v; want nil", m, err)
	}
}
