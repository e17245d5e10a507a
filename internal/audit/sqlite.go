package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/ladder/internal/model"
)

// SQLiteStore persists decisions in a SQLite table named decisions.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

var _ Sink = (*SQLiteStore)(nil)

// OpenSQLite creates (or opens) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		decision_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		tool TEXT,
		summary TEXT,
		operations TEXT,
		touched_paths TEXT,
		parse_confidence TEXT,
		outcome TEXT,
		intention TEXT,
		domain TEXT,
		security_profile TEXT,
		risk INTEGER,
		review_level TEXT,
		requires_pin INTEGER,
		reasons TEXT,
		config_hash TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS decisions_ts ON decisions(ts)`)
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

// Record inserts r.
func (s *SQLiteStore) Record(r Record) error {
	ops, err := json.Marshal(r.Operations)
	if err != nil {
		return fmt.Errorf("audit: marshal operations: %w", err)
	}
	paths, err := json.Marshal(r.TouchedPaths)
	if err != nil {
		return fmt.Errorf("audit: marshal paths: %w", err)
	}
	reasons, err := json.Marshal(r.Reasons)
	if err != nil {
		return fmt.Errorf("audit: marshal reasons: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO decisions
		(decision_id, ts, tool, summary, operations, touched_paths, parse_confidence,
		 outcome, intention, domain, security_profile, risk, review_level, requires_pin,
		 reasons, config_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.DecisionID,
		r.Timestamp,
		r.Tool,
		r.Summary,
		string(ops),
		string(paths),
		string(r.Confidence),
		string(r.Outcome),
		string(r.Intention),
		string(r.Domain),
		string(r.Profile),
		int(r.Risk),
		string(r.ReviewLevel),
		boolToInt(r.RequiresPin),
		string(reasons),
		r.ConfigHash,
	)
	if err != nil {
		return fmt.Errorf("audit: insert decision: %w", err)
	}
	return nil
}

// Query returns records matching f, most recent first.
func (s *SQLiteStore) Query(f Filter) ([]Record, error) {
	var b strings.Builder
	b.WriteString(`SELECT decision_id, ts, tool, summary, operations, touched_paths,
		parse_confidence, outcome, intention, domain, security_profile, risk,
		review_level, requires_pin, reasons, config_hash FROM decisions`)

	var where []string
	var args []any
	if f.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.MinRisk > model.RiskPass {
		where = append(where, "risk >= ?")
		args = append(args, int(f.MinRisk))
	}
	if !f.From.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, f.From.UTC().Format(TimestampFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, f.To.UTC().Format(TimestampFormat))
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ts DESC, id DESC")

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query decisions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                     Record
			ops, paths, reasons   string
			conf, outcome, intent string
			domain, profile, lvl  string
			risk, pin             int
		)
		if err := rows.Scan(&r.DecisionID, &r.Timestamp, &r.Tool, &r.Summary, &ops, &paths,
			&conf, &outcome, &intent, &domain, &profile, &risk, &lvl, &pin, &reasons, &r.ConfigHash); err != nil {
			return nil, fmt.Errorf("audit: scan decision: %w", err)
		}
		_ = json.Unmarshal([]byte(ops), &r.Operations)
		_ = json.Unmarshal([]byte(paths), &r.TouchedPaths)
		_ = json.Unmarshal([]byte(reasons), &r.Reasons)
		r.Confidence = model.ParseConfidence(conf)
		r.Outcome = model.Outcome(outcome)
		r.Intention = model.Intention(intent)
		r.Domain = model.Domain(domain)
		r.Profile = model.SecurityProfile(profile)
		r.Risk = model.RiskScore(risk)
		r.ReviewLevel = model.ReviewLevel(lvl)
		r.RequiresPin = pin == 1

		// Review levels are ranked in Go so unknown values sort as C.
		if f.MinLevel != "" && r.ReviewLevel.Rank() < f.MinLevel.Rank() {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: read decisions: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
