// Package sqlite stores results in a SQLite table using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crimson-sun/tiermap/internal/output"
)

// Schema for the classifications table. Applied by New.
const Schema = `
CREATE TABLE IF NOT EXISTS classifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	item_index INTEGER NOT NULL,
	ref TEXT,
	method TEXT,
	domain TEXT,
	domain_confidence REAL,
	category_ids TEXT,
	age_range TEXT,
	sophistication_score INTEGER,
	sophistication_tier TEXT,
	processing_time_seconds REAL,
	degraded_reason TEXT,
	error TEXT,
	record TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classifications_run ON classifications(run_id, item_index);
CREATE INDEX IF NOT EXISTS idx_classifications_domain ON classifications(domain);
`

const insertSQL = `INSERT INTO classifications (
	run_id, item_index, ref, method, domain, domain_confidence, category_ids,
	age_range, sophistication_score, sophistication_tier, processing_time_seconds,
	degraded_reason, error, record, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Output inserts one row per envelope.
type Output struct {
	mu    sync.Mutex
	db    *sql.DB
	stmt  *sql.Stmt
	runID string
	owned bool
}

// Option configures an Output.
type Option func(*Output)

// WithRunID tags rows so several batches can share one database.
// Default: the start time in RFC 3339.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}

// Open opens (or creates) the database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Output, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: open %s: %w", path, err)
	}
	// One writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	o, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	o.owned = true
	return o, nil
}

// New uses an existing database handle and applies Schema. Close does not
// close db.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Output, error) {
	o := &Output{db: db, runID: time.Now().UTC().Format(time.RFC3339)}
	for _, opt := range opts {
		opt(o)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("sqlite output: schema: %w", err)
	}
	stmt, err := db.PrepareContext(ctx, insertSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: prepare: %w", err)
	}
	o.stmt = stmt
	return o, nil
}

func (o *Output) Write(ctx context.Context, env output.Envelope) error {
	entry := output.FormatEnvelope(env, output.Full)

	var (
		method, domain, ids, age, tier, reason, errText string
		conf, secs                                      float64
		score                                           int
		record                                          []byte
	)
	if env.Err != nil {
		errText = env.Err.Error()
	}
	if rec := entry.Record; rec != nil {
		method, domain = string(rec.Method), rec.Domain
		conf, secs = rec.DomainConfidence, rec.ProcessingTimeSeconds
		age, score, tier = rec.Profile.AgeRange, rec.Profile.SophisticationScore, rec.Profile.SophisticationTier
		reason = rec.DegradedReason
		idList := make([]string, len(rec.Categories))
		for i, c := range rec.Categories {
			idList[i] = c.ID
		}
		b, err := json.Marshal(idList)
		if err != nil {
			return fmt.Errorf("sqlite output: %w", err)
		}
		ids = string(b)
		if record, err = json.Marshal(rec); err != nil {
			return fmt.Errorf("sqlite output: %w", err)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.stmt.ExecContext(ctx,
		o.runID, env.Index, env.Ref, method, domain, conf, ids,
		age, score, tier, secs, reason, errText, string(record), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite output: insert: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	err := o.stmt.Close()
	if o.owned {
		err = errors.Join(err, o.db.Close())
	}
	return err
}
