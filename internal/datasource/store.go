// Package datasource discovers, reads, and replays the damselfly trace
// database. It owns the SQLite schema the capture side writes into, the
// replay engine that turns an event log into block snapshots, and the
// file watcher that signals live updates.
package datasource

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// Pool describes one traced memory pool.
type Pool struct {
	Name      string
	Start     uint64
	Size      uint64
	BlockSize uint64
}

// eventRow is the raw wire form of one trace event. Kind is stored as
// text; anything other than "alloc" or "free" is an integrity violation
// surfaced during decoding, not a fatal error.
type eventRow struct {
	ID        int64
	Kind      string
	Address   uint64
	Size      uint64
	Callstack string
	WallTime  uint64
}

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	name       TEXT PRIMARY KEY,
	start      INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	block_size INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	pool      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	address   INTEGER NOT NULL,
	size      INTEGER NOT NULL,
	callstack TEXT NOT NULL DEFAULT '',
	wall_time INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_pool_id ON events(pool, id);
`

// Store wraps the trace database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if necessary) the trace database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open trace db %s", path)
	}
	// The viewer reads while a capture tool may still be writing.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set pragmas")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// AddPool registers a pool, replacing any previous definition.
func (s *Store) AddPool(p Pool) error {
	_, err := s.db.Exec(
		`INSERT INTO pools (name, start, size, block_size) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET start=excluded.start, size=excluded.size, block_size=excluded.block_size`,
		p.Name, int64(p.Start), int64(p.Size), int64(p.BlockSize),
	)
	return errors.Wrapf(err, "add pool %s", p.Name)
}

// AddEvent appends one trace event to a pool's log.
func (s *Store) AddEvent(pool, kind string, address, size uint64, callstack string, wallTime uint64) error {
	_, err := s.db.Exec(
		`INSERT INTO events (pool, kind, address, size, callstack, wall_time) VALUES (?, ?, ?, ?, ?, ?)`,
		pool, kind, int64(address), int64(size), callstack, int64(wallTime),
	)
	return errors.Wrapf(err, "add %s event to pool %s", kind, pool)
}

// ListPools returns all pools ordered by name.
func (s *Store) ListPools() ([]Pool, error) {
	rows, err := s.db.Query(`SELECT name, start, size, block_size FROM pools ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list pools")
	}
	defer rows.Close()

	var pools []Pool
	for rows.Next() {
		var p Pool
		var start, size, blockSize int64
		if err := rows.Scan(&p.Name, &start, &size, &blockSize); err != nil {
			return nil, errors.Wrap(err, "scan pool")
		}
		p.Start, p.Size, p.BlockSize = uint64(start), uint64(size), uint64(blockSize)
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// SetBlockSize updates a pool's tile granularity.
func (s *Store) SetBlockSize(pool string, blockSize uint64) error {
	res, err := s.db.Exec(`UPDATE pools SET block_size = ? WHERE name = ?`, int64(blockSize), pool)
	if err != nil {
		return errors.Wrapf(err, "set block size for pool %s", pool)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Newf("pool %s not found", pool)
	}
	return nil
}

// loadEvents reads a pool's full event log in insertion order.
func (s *Store) loadEvents(pool string) ([]eventRow, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, address, size, callstack, wall_time FROM events WHERE pool = ? ORDER BY id`,
		pool,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "load events for pool %s", pool)
	}
	defer rows.Close()

	var out []eventRow
	for rows.Next() {
		var r eventRow
		var address, size, wallTime int64
		if err := rows.Scan(&r.ID, &r.Kind, &address, &size, &r.Callstack, &wallTime); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		r.Address, r.Size, r.WallTime = uint64(address), uint64(size), uint64(wallTime)
		out = append(out, r)
	}
	return out, rows.Err()
}
