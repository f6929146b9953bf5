package cache

import (
	"database/sql"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/drift"
	"github.com/hlop3z/swan/internal/engine"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultDir is the default cache directory, relative to the plugin.
	DefaultDir = ".swan"
	// CacheFile is the SQLite database file name.
	CacheFile = "swan.db"
)

// Cache stores the history of migrate runs in <dir>/swan.db.
type Cache struct {
	db      *sql.DB
	path    string
	mu      sync.RWMutex
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the cache database in dir.
func Open(dir string) (*Cache, error) {
	cachePath := filepath.Join(dir, CacheFile)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to create cache directory").
			With("path", dir)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to open cache database").
			With("path", cachePath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to connect to cache database").
			With("path", cachePath)
	}

	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	cache := &Cache{
		db:      db,
		path:    cachePath,
		entropy: ulid.Monotonic(src, 0),
	}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the cache database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the path to the cache database file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *Cache) initSchema() error {
	schema := `
		-- One row per migrate run
		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			component     TEXT NOT NULL,
			from_version  INTEGER NOT NULL,
			to_version    INTEGER NOT NULL,
			summary       TEXT NOT NULL,
			counts        BLOB NOT NULL,
			root_hash     TEXT NOT NULL,
			snapshot      BLOB NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS runs_component_ix ON runs (component, id);

		-- Cache metadata (version, etc.)
		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('version', '1');
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(schema); err != nil {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to initialize cache schema")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Runs
// -----------------------------------------------------------------------------

// Run describes one migrate run.
type Run struct {
	ID          string
	Component   string
	FromVersion int64
	ToVersion   int64
	Summary     string         // e.g. "1 table created, 2 fields added"
	Counts      map[string]int // operation type name -> count
	RootHash    string         // merkle root of the structure written
	CreatedAt   time.Time
}

// NewRun describes a run that applied plan on top of version from.
func NewRun(plan *engine.Plan, from int64) *Run {
	summary := engine.Summarize(plan.Operations())
	counts := make(map[string]int, len(summary.Counts))
	for typ, n := range summary.Counts {
		counts[typ.String()] = n
	}
	return &Run{
		Component:   plan.Component,
		FromVersion: from,
		ToVersion:   plan.Version,
		Summary:     summary.String(),
		Counts:      counts,
	}
}

// RecordRun stores run together with the structure it wrote, filling in
// ID, RootHash and CreatedAt.
func (c *Cache) RecordRun(run *Run, snapshot *ast.Structure) error {
	data, err := SerializeStructure(snapshot)
	if err != nil {
		return err
	}
	hash, err := drift.ComputeHash(snapshot)
	if err != nil {
		return err
	}
	counts, err := msgpack.Marshal(run.Counts)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to encode operation counts")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), c.entropy).String()

	_, err = c.db.Exec(
		`INSERT INTO runs (id, component, from_version, to_version, summary, counts, root_hash, snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Component, run.FromVersion, run.ToVersion, run.Summary, counts,
		hash.Root, data, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to record run").
			With("component", run.Component)
	}

	run.ID = id
	run.RootHash = hash.Root
	run.CreatedAt = now
	return nil
}

const runColumns = "id, component, from_version, to_version, summary, counts, root_hash, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var counts []byte
	var createdAt string
	if err := row.Scan(&run.ID, &run.Component, &run.FromVersion, &run.ToVersion,
		&run.Summary, &counts, &run.RootHash, &createdAt); err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(counts, &run.Counts); err != nil {
		return nil, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &run, nil
}

// Run retrieves a run by ID. Returns nil if not found.
func (c *Cache) Run(id string) (*Run, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	run, err := scanRun(c.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read run").
			With("id", id)
	}
	return run, nil
}

// Runs lists runs newest first. An empty component lists every component;
// limit <= 0 means no limit.
func (c *Cache) Runs(component string, limit int) ([]*Run, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(
		"SELECT "+runColumns+" FROM runs WHERE ? = '' OR component = ? ORDER BY id DESC LIMIT ?",
		component, component, limit,
	)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the newest run of component, or nil.
func (c *Cache) LastRun(component string) (*Run, error) {
	runs, err := c.Runs(component, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Snapshot returns the structure recorded with run id. Returns nil if not found.
func (c *Cache) Snapshot(id string) (*ast.Structure, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var data []byte
	err := c.db.QueryRow("SELECT snapshot FROM runs WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read snapshot").
			With("id", id)
	}
	return DeserializeStructure(data)
}

// DeleteRun removes a single run.
func (c *Cache) DeleteRun(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to delete run").
			With("id", id)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Cache Management Operations
// -----------------------------------------------------------------------------

// Clear removes all recorded runs.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM runs"); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to clear cache")
	}
	return nil
}

// Version returns the cache schema version.
func (c *Cache) Version() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var version string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read cache version")
	}
	return version, nil
}

// Stats describes the cache contents.
type Stats struct {
	Runs         int
	Components   int
	DatabaseSize int64
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &Stats{}
	if err := c.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT component) FROM runs").
		Scan(&stats.Runs, &stats.Components); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to count runs")
	}
	if fi, err := os.Stat(c.path); err == nil {
		stats.DatabaseSize = fi.Size()
	}
	return stats, nil
}

// Vacuum compacts the database file.
func (c *Cache) Vacuum() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("VACUUM"); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to vacuum cache database")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// Exists checks if a cache database exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CacheFile))
	return err == nil
}

// Remove deletes the entire cache directory.
func Remove(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to remove cache directory").
			With("path", dir)
	}
	return nil
}
