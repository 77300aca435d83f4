// Package persistence provides SQLite-based sector state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/engine"
)

// ErrNoWorld is returned by LoadAgents when the database holds no saved sector.
var ErrNoWorld = errors.New("no saved world")

// DB wraps a SQLite connection for sector state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		home_id INTEGER,
		produces TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		alive INTEGER NOT NULL,
		ledger_json TEXT NOT NULL,
		rules_json TEXT NOT NULL,
		history_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		at_ms INTEGER NOT NULL,
		agent_id INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent_id);
	CREATE INDEX IF NOT EXISTS idx_agents_type ON agents(type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type agentRow struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	Type        string        `db:"type"`
	PosX        float64       `db:"pos_x"`
	PosY        float64       `db:"pos_y"`
	HomeID      sql.NullInt64 `db:"home_id"`
	Produces    string        `db:"produces"`
	State       string        `db:"state"`
	Alive       bool          `db:"alive"`
	LedgerJSON  string        `db:"ledger_json"`
	RulesJSON   string        `db:"rules_json"`
	HistoryJSON string        `db:"history_json"`
}

// SaveAgents writes all agents to the database (full replace). In-flight
// tasks are not stored.
func (db *DB) SaveAgents(agentList []*agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(id, name, type, pos_x, pos_y, home_id, produces, state, alive,
		 ledger_json, rules_json, history_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range agentList {
		ledgerJSON, err := json.Marshal(a.Ledger)
		if err != nil {
			return fmt.Errorf("encode ledger %d: %w", a.ID, err)
		}
		rulesJSON, err := json.Marshal(a.Rules)
		if err != nil {
			return fmt.Errorf("encode rules %d: %w", a.ID, err)
		}
		historyJSON, _ := json.Marshal(a.History)

		var home sql.NullInt64
		if a.Home != nil {
			home = sql.NullInt64{Int64: int64(*a.Home), Valid: true}
		}

		_, err = stmt.Exec(
			a.ID, a.Name, a.Type, a.Position.X(), a.Position.Y(), home,
			a.Produces, a.State.Kind, a.Alive,
			string(ledgerJSON), string(rulesJSON), string(historyJSON),
		)
		if err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAgents reads every saved agent. Agents come back idle unless they
// were broken down, since a half-finished visit cannot be resumed.
func (db *DB) LoadAgents() ([]*agents.Agent, error) {
	var rows []agentRow
	if err := db.conn.Select(&rows, "SELECT * FROM agents ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoWorld
	}

	out := make([]*agents.Agent, 0, len(rows))
	for _, r := range rows {
		a := &agents.Agent{
			ID:       agents.AgentID(r.ID),
			Name:     r.Name,
			Type:     agents.AgentType(r.Type),
			Position: orb.Point{r.PosX, r.PosY},
			Produces: agents.Good(r.Produces),
			State:    agents.Idle(),
			Visitors: make(map[agents.AgentID]struct{}),
			Alive:    r.Alive,
		}
		if agents.StateKind(r.State) == agents.StateBroken {
			a.State = agents.State{Kind: agents.StateBroken}
		}
		if r.HomeID.Valid {
			home := agents.AgentID(r.HomeID.Int64)
			a.Home = &home
		}
		if err := json.Unmarshal([]byte(r.LedgerJSON), &a.Ledger); err != nil {
			return nil, fmt.Errorf("decode ledger %d: %w", r.ID, err)
		}
		if a.Ledger == nil {
			a.Ledger = agents.Ledger{}
		}
		if err := json.Unmarshal([]byte(r.RulesJSON), &a.Rules); err != nil {
			return nil, fmt.Errorf("decode rules %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.HistoryJSON), &a.History); err != nil {
			slog.Warn("dropping unreadable history", "agent", r.ID, "error", err)
			a.History = nil
		}
		out = append(out, a)
	}
	return out, nil
}

type eventRow struct {
	Tick        uint64         `db:"tick"`
	AtMs        int64          `db:"at_ms"`
	AgentID     int64          `db:"agent_id"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	MetaJSON    sql.NullString `db:"meta_json"`
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		var meta sql.NullString
		if len(e.Meta) > 0 {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
			meta = sql.NullString{String: string(b), Valid: true}
		}
		_, err := tx.Exec(
			"INSERT INTO events (tick, at_ms, agent_id, description, category, meta_json) VALUES (?, ?, ?, ?, ?, ?)",
			e.Tick, e.At.Milliseconds(), e.Agent, e.Description, e.Category, meta,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first. A non-zero
// agent restricts the result to that agent's events.
func (db *DB) RecentEvents(limit int, agent agents.AgentID) ([]engine.Event, error) {
	var rows []eventRow
	var err error
	if agent != 0 {
		err = db.conn.Select(&rows,
			"SELECT tick, at_ms, agent_id, description, category, meta_json FROM events WHERE agent_id = ? ORDER BY id DESC LIMIT ?",
			agent, limit,
		)
	} else {
		err = db.conn.Select(&rows,
			"SELECT tick, at_ms, agent_id, description, category, meta_json FROM events ORDER BY id DESC LIMIT ?",
			limit,
		)
	}
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{
			Tick:        r.Tick,
			At:          time.Duration(r.AtMs) * time.Millisecond,
			Agent:       agents.AgentID(r.AgentID),
			Description: r.Description,
			Category:    r.Category,
		}
		if r.MetaJSON.Valid {
			_ = json.Unmarshal([]byte(r.MetaJSON.String), &e.Meta)
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// LastTick returns the saved tick counter, or 0 when none is stored.
func (db *DB) LastTick() (uint64, error) {
	v, err := db.GetMeta("last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

// SaveWorldState performs a full save: agents, events emitted since the
// last save, and the tick counter.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	ag := sim.Export()
	events := sim.DrainPending()
	tick := sim.CurrentTick()
	slog.Info("saving sector state", "agents", len(ag), "events", len(events), "tick", tick)

	if err := db.SaveAgents(ag); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("sector state saved")
	return nil
}
