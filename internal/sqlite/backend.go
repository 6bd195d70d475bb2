// Package sqlite implements the local ref store on SQLite.
//
// JSONL files in the data directory are the source of truth. On Attach the
// SQLite database is recreated from them; every mutation commits to SQLite
// and then rewrites the affected JSONL files atomically.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

// DBFile is the SQLite database file created in DataDir.
const DBFile = "reffo.db"

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]types.Table
	beaconID string
	started  time.Time

	// writeMu serializes mutations so JSONL snapshots are never written out
	// of order.
	writeMu sync.Mutex
}

var _ types.BeaconStore = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]types.Table),
	}
}

// GetTable returns the Table for the given name.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach initializes the backend: it creates DataDir, recreates the SQLite
// database, loads the JSONL files, and seeds beacon settings on first run.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(config.DataDir, DBFile)
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		_ = os.Remove(dbPath + suffix)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := initJSONLFiles(config.DataDir); err != nil {
		db.Close()
		return err
	}
	loaded, err := loadAllJSONL(db, config.DataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config

	settings, seeded, err := seedBeaconSettings(b)
	if err != nil {
		b.db = nil
		db.Close()
		return fmt.Errorf("seeding beacon settings: %w", err)
	}
	b.beaconID = settings.ID

	b.tables = map[string]types.Table{
		types.TableRefs:         &refsTable{backend: b},
		types.TableOffers:       &offersTable{backend: b},
		types.TableNegotiations: &negotiationsTable{backend: b},
		types.TableMedia:        &mediaTable{backend: b},
		types.TableSettings:     &settingsTable{backend: b},
	}
	b.started = time.Now()
	b.attached = true

	b.log().Info("store.attached",
		"data_dir", config.DataDir,
		"beacon_id", settings.ID,
		"seeded", seeded,
		"refs", loaded[types.TableRefs],
		"offers", loaded[types.TableOffers],
		"negotiations", loaded[types.TableNegotiations],
		"media", loaded[types.TableMedia],
	)
	return nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// Detach closes the SQLite connection. After Detach, GetTable returns
// ErrStoreDetached and table accessors obtained earlier fail with it.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.tables = make(map[string]types.Table)

	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	b.log().Info("store.detached", "data_dir", b.config.DataDir)
	return nil
}

// BeaconID returns the ID of the beacon that owns this store.
func (b *Backend) BeaconID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.beaconID
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Info summarizes the beacon. Peer networking is not part of the store, so
// DHT always reports disconnected.
func (b *Backend) Info(version string) (types.BeaconInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.BeaconInfo{}, types.ErrStoreDetached
	}

	info := types.BeaconInfo{
		ID:      b.beaconID,
		Version: version,
		Uptime:  time.Since(b.started).Seconds(),
	}
	if err := b.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&info.RefCount); err != nil {
		return types.BeaconInfo{}, fmt.Errorf("counting refs: %w", err)
	}
	if err := b.db.QueryRow("SELECT COUNT(*) FROM offers WHERE status = ?", types.OfferActive).Scan(&info.OfferCount); err != nil {
		return types.BeaconInfo{}, fmt.Errorf("counting offers: %w", err)
	}
	return info, nil
}

func (b *Backend) log() *slog.Logger {
	return logger.L().With("component", "store")
}

// begin checks that the backend is attached and takes the write lock.
// Callers must call the returned unlock.
func (b *Backend) begin() (unlock func(), err error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrStoreDetached
	}
	b.writeMu.Lock()
	return func() {
		b.writeMu.Unlock()
		b.mu.RUnlock()
	}, nil
}

// read checks that the backend is attached for a read.
func (b *Backend) read() (unlock func(), err error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrStoreDetached
	}
	return b.mu.RUnlock, nil
}
