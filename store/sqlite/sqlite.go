/*
Package sqlite persists one interactive session: the loaded shift table,
the transaction list, and the append-only grid override log.

PURPOSE:
  The engine itself is pure and in-memory; this store exists so an
  interactive session survives a server restart mid-shift review. It holds
  exactly one session at a time (loading a new one replaces the old), which
  keeps the single-operator model honest.

OVERRIDE LOG:
  Grid edits are stored append-only, like a ledger. Replaying the log over
  a freshly seeded grid reproduces the operator's current state; last write
  per cell wins.

TABLES:
  sessions:       One row; session metadata plus the raw shift table (JSON)
  transactions:   The session's monetary events (amounts stored as text)
  grid_overrides: Append-only operator edit log

USAGE:
  store, err := sqlite.New(":memory:")
  ...
  defer store.Close()

SEE ALSO:
  - api: The only consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/attribution"
	"github.com/atlas/coverage-engine/schedule"
)

// ErrNoSession is returned when no session has been loaded yet.
var ErrNoSession = errors.New("no session loaded")

// SessionRecord is the persisted session metadata.
type SessionRecord struct {
	ID        string
	CreatedAt time.Time
	Window    schedule.DateRange
}

// Override is one persisted grid edit.
type Override struct {
	ID        string
	Date      schedule.DayDate
	Hour      int
	Ordinal   int
	State     schedule.SlotState
	CreatedAt time.Time
}

// Store persists the current session in SQLite. ":memory:" keeps it
// in-process for tests and ephemeral runs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A pooled second connection to ":memory:" would see a fresh empty
	// database. One connection is plenty for a single-operator store.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		shift_table_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		session_id TEXT NOT NULL,
		at TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_session ON transactions(session_id);

	-- Append-only operator edit log. No UPDATE, no DELETE; replay order
	-- is insertion order.
	CREATE TABLE IF NOT EXISTS grid_overrides (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hour INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_overrides_session ON grid_overrides(session_id);
	`
	_, err := s.db.Exec(schemaSQL)
	return err
}

// shiftTableJSON is the persisted form of schedule.RawShiftTable.
type shiftTableJSON struct {
	Dates []string        `json:"dates"`
	Rows  []shiftRowJSON  `json:"rows"`
}

type shiftRowJSON struct {
	Name  string   `json:"name"`
	Cells []string `json:"cells"`
}

// CreateSession replaces any existing session with the given one.
func (s *Store) CreateSession(ctx context.Context, rec SessionRecord, shifts schedule.RawShiftTable, txs []attribution.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := shiftTableJSON{}
	for _, d := range shifts.Dates {
		blob.Dates = append(blob.Dates, d.String())
	}
	for _, r := range shifts.Rows {
		blob.Rows = append(blob.Rows, shiftRowJSON{Name: r.Name, Cells: r.Cells})
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode shift table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"sessions", "transactions", "grid_overrides"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, from_date, to_date, shift_table_json)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Window.From.String(), rec.Window.To.String(), string(raw))
	if err != nil {
		return err
	}

	for _, t := range txs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (session_id, at, amount, category) VALUES (?, ?, ?, ?)`,
			rec.ID, t.At.Format("2006-01-02 15:04:05"), t.Amount.String(), t.Category)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CurrentSession returns the loaded session, or ErrNoSession.
func (s *Store) CurrentSession(ctx context.Context) (SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, from_date, to_date FROM sessions LIMIT 1`)

	var rec SessionRecord
	var createdAt, from, to string
	if err := row.Scan(&rec.ID, &createdAt, &from, &to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, ErrNoSession
		}
		return SessionRecord{}, err
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	fromDate, err := schedule.ParseDayDate(from)
	if err != nil {
		return SessionRecord{}, err
	}
	toDate, err := schedule.ParseDayDate(to)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.Window = schedule.DateRange{From: fromDate, To: toDate}
	return rec, nil
}

// LoadShiftTable returns the session's raw shift table.
func (s *Store) LoadShiftTable(ctx context.Context, sessionID string) (schedule.RawShiftTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT shift_table_json FROM sessions WHERE id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.RawShiftTable{}, ErrNoSession
	}
	if err != nil {
		return schedule.RawShiftTable{}, err
	}

	var blob shiftTableJSON
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return schedule.RawShiftTable{}, fmt.Errorf("decode shift table: %w", err)
	}

	var table schedule.RawShiftTable
	for _, d := range blob.Dates {
		date, err := schedule.ParseDayDate(d)
		if err != nil {
			return schedule.RawShiftTable{}, err
		}
		table.Dates = append(table.Dates, date)
	}
	for _, r := range blob.Rows {
		table.Rows = append(table.Rows, schedule.RawShiftRow{Name: r.Name, Cells: r.Cells})
	}
	return table, nil
}

// LoadTransactions returns the session's transactions in insertion order.
func (s *Store) LoadTransactions(ctx context.Context, sessionID string) ([]attribution.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT at, amount, category FROM transactions WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []attribution.Transaction
	for rows.Next() {
		var at, amount string
		var category sql.NullString
		if err := rows.Scan(&at, &amount, &category); err != nil {
			return nil, err
		}
		t, err := time.Parse("2006-01-02 15:04:05", at)
		if err != nil {
			return nil, fmt.Errorf("corrupt transaction timestamp %q: %w", at, err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt transaction amount %q: %w", amount, err)
		}
		txs = append(txs, attribution.Transaction{At: t, Amount: d, Category: category.String})
	}
	return txs, rows.Err()
}

// AppendOverride persists one grid edit. Append-only.
func (s *Store) AppendOverride(ctx context.Context, sessionID string, ov Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grid_overrides (id, session_id, date, hour, ordinal, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ov.ID, sessionID, ov.Date.String(), ov.Hour, ov.Ordinal, ov.State.String(),
		ov.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// ListOverrides returns the session's edit log in replay order.
func (s *Store) ListOverrides(ctx context.Context, sessionID string) ([]Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, hour, ordinal, state, created_at
		 FROM grid_overrides WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		var ov Override
		var date, state, createdAt string
		if err := rows.Scan(&ov.ID, &date, &ov.Hour, &ov.Ordinal, &state, &createdAt); err != nil {
			return nil, err
		}
		if ov.Date, err = schedule.ParseDayDate(date); err != nil {
			return nil, err
		}
		ov.State = parseSlotState(state)
		ov.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, ov)
	}
	return out, rows.Err()
}

func parseSlotState(s string) schedule.SlotState {
	switch s {
	case "eligible":
		return schedule.SlotEligible
	case "on_break":
		return schedule.SlotOnBreak
	default:
		return schedule.SlotAbsent
	}
}
