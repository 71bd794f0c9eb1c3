// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "workspaces.db"
)

// SQLStore persists workspaces in a SQLite database at
// dataDir/index/workspaces.db. Instruments are stored once per
// *instrument.Instrument and cached, so every workspace loaded by one
// SQLStore that shares an instrument row gets the same *Instrument.
type SQLStore struct {
	notifier

	db *sql.DB

	mu      sync.Mutex
	instIDs map[*instrument.Instrument]string
	insts   map[string]*instrument.Instrument
}

// NewSQLStore opens or creates the database and its schema.
func NewSQLStore(dataDir string) (*SQLStore, error) {
	dbDir := filepath.Join(dataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLStore{
		db:      db,
		instIDs: make(map[*instrument.Instrument]string),
		insts:   make(map[string]*instrument.Instrument),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS instruments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			definition TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workspaces (
			name TEXT PRIMARY KEY,
			instrument_id TEXT REFERENCES instruments(id),
			peak_count INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS peaks (
			workspace TEXT NOT NULL REFERENCES workspaces(name) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			detector_id INTEGER NOT NULL,
			wavelength REAL NOT NULL,
			qx REAL NOT NULL,
			qy REAL NOT NULL,
			qz REAL NOT NULL,
			PRIMARY KEY (workspace, seq)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put stores ws under name in one transaction, replacing any previous
// workspace of that name.
func (s *SQLStore) Put(ctx context.Context, name string, ws *peaks.Workspace) error {
	if err := checkPut(name, ws); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var instID sql.NullString
	if inst := ws.Instrument(); inst != nil {
		id, err := s.saveInstrument(ctx, tx, inst)
		if err != nil {
			return err
		}
		instID = sql.NullString{String: id, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting old workspace: %w", err)
	}
	removed, _ := res.RowsAffected()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workspaces (name, instrument_id, peak_count, updated_at) VALUES (?, ?, ?, ?)`,
		name, instID, ws.Number(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting workspace: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO peaks (workspace, seq, detector_id, wavelength, qx, qy, qz)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range ws.Peaks() {
		q := p.QLabFrame()
		if _, err := stmt.ExecContext(ctx, name, i, p.DetectorID(), p.Wavelength(), q.X, q.Y, q.Z); err != nil {
			return fmt.Errorf("inserting peak %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workspace %s: %w", name, err)
	}

	s.rememberInstrument(instID.String, ws.Instrument())

	kind := EventAdded
	if removed > 0 {
		kind = EventReplaced
	}
	s.publish(Event{Kind: kind, Name: name, Peaks: ws.Number()})
	return nil
}

// saveInstrument returns the row ID for inst, inserting the definition the
// first time this store sees the pointer.
func (s *SQLStore) saveInstrument(ctx context.Context, tx *sql.Tx, inst *instrument.Instrument) (string, error) {
	s.mu.Lock()
	id, ok := s.instIDs[inst]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	def, err := yaml.Marshal(inst.Definition())
	if err != nil {
		return "", fmt.Errorf("marshaling instrument %s: %w", inst.Name(), err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO instruments (id, name, definition) VALUES (?, ?, ?)`,
		id, inst.Name(), string(def),
	); err != nil {
		return "", fmt.Errorf("inserting instrument %s: %w", inst.Name(), err)
	}
	return id, nil
}

func (s *SQLStore) rememberInstrument(id string, inst *instrument.Instrument) {
	if id == "" || inst == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instIDs[inst] = id
	s.insts[id] = inst
}

// Get loads the workspace stored under name. Peaks keep their stored Q.
func (s *SQLStore) Get(ctx context.Context, name string) (*peaks.Workspace, error) {
	var instID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT instrument_id FROM workspaces WHERE name = ?`, name,
	).Scan(&instID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("looking up workspace: %w", err)
	}

	var inst *instrument.Instrument
	if instID.Valid {
		inst, err = s.loadInstrument(ctx, instID.String)
		if err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT detector_id, wavelength, qx, qy, qz FROM peaks WHERE workspace = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("querying peaks: %w", err)
	}
	defer rows.Close()

	ws := peaks.NewWorkspace(inst)
	for rows.Next() {
		var (
			r          types.PeakRecord
			qx, qy, qz float64
		)
		if err := rows.Scan(&r.DetectorID, &r.Wavelength, &qx, &qy, &qz); err != nil {
			return nil, fmt.Errorf("scanning peak: %w", err)
		}
		r.QLab = []float64{qx, qy, qz}

		p, err := peaks.Restore(inst, r)
		if err != nil {
			return nil, fmt.Errorf("restoring peak of %s: %w", name, err)
		}
		if err := ws.AddPeak(p); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *SQLStore) loadInstrument(ctx context.Context, id string) (*instrument.Instrument, error) {
	s.mu.Lock()
	inst, ok := s.insts[id]
	s.mu.Unlock()
	if ok {
		return inst, nil
	}

	var data string
	if err := s.db.QueryRowContext(ctx,
		`SELECT definition FROM instruments WHERE id = ?`, id,
	).Scan(&data); err != nil {
		return nil, fmt.Errorf("loading instrument %s: %w", id, err)
	}

	var def types.InstrumentDefinition
	if err := yaml.Unmarshal([]byte(data), &def); err != nil {
		return nil, fmt.Errorf("parsing instrument %s: %w", id, err)
	}
	inst, err := instrument.FromDefinition(def)
	if err != nil {
		return nil, err
	}

	s.rememberInstrument(id, inst)
	return inst, nil
}

// Remove deletes the workspace and its peaks.
func (s *SQLStore) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.publish(Event{Kind: EventRemoved, Name: name})
	return nil
}

// Names lists stored workspaces in name order.
func (s *SQLStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
