package templates

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS templates (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	category         TEXT NOT NULL,
	text             TEXT NOT NULL,
	required_json    TEXT NOT NULL,
	optional_json    TEXT NOT NULL,
	constraints_json TEXT NOT NULL,
	usage_count      INTEGER NOT NULL DEFAULT 0,
	effectiveness    REAL NOT NULL CHECK (effectiveness >= 0 AND effectiveness <= 1),
	active           INTEGER NOT NULL DEFAULT 1,
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category, active);
`
// #endregion schema

// #region store-struct
// Store persists registry templates and feedback events in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(logging.FeedbackSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate feedback log: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region save-template
// SaveTemplate inserts or replaces a template row.
func (s *Store) SaveTemplate(t Template) error {
	req, err := json.Marshal(nonNil(t.Required))
	if err != nil {
		return fmt.Errorf("marshal required: %w", err)
	}
	opt, err := json.Marshal(nonNil(t.Optional))
	if err != nil {
		return fmt.Errorf("marshal optional: %w", err)
	}
	cons, err := json.Marshal(t.Constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints: %w", err)
	}

	active := 0
	if t.Active {
		active = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO templates (id, name, category, text, required_json, optional_json, constraints_json, usage_count, effectiveness, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			text = excluded.text,
			required_json = excluded.required_json,
			optional_json = excluded.optional_json,
			constraints_json = excluded.constraints_json,
			usage_count = excluded.usage_count,
			effectiveness = excluded.effectiveness,
			active = excluded.active`,
		t.ID, t.Name, t.Category, t.Text, string(req), string(opt), string(cons),
		t.UsageCount, t.Effectiveness, active, t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert template %s: %w", t.ID, err)
	}
	return nil
}
// #endregion save-template

// #region record-feedback
// RecordFeedback appends a row to feedback_log.
func (s *Store) RecordFeedback(entry logging.FeedbackEntry) error {
	return logging.LogFeedback(s.db, entry)
}

// FeedbackCount returns how many feedback rows exist for a template.
func (s *Store) FeedbackCount(templateID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM feedback_log WHERE template_id = ?`, templateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}
// FeedbackHistory returns the newest feedback rows for a template.
func (s *Store) FeedbackHistory(templateID string, last int) ([]logging.FeedbackEntry, error) {
	return logging.ListFeedback(s.db, templateID, last)
}
// #endregion record-feedback

// #region load-templates
// LoadTemplates returns every stored template ordered by creation time.
func (s *Store) LoadTemplates() ([]Template, error) {
	rows, err := s.db.Query(
		`SELECT id, name, category, text, required_json, optional_json, constraints_json,
		        usage_count, effectiveness, active, created_at
		 FROM templates ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		var req, opt, cons, createdStr string
		var active int
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Text, &req, &opt, &cons,
			&t.UsageCount, &t.Effectiveness, &active, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(req), &t.Required); err != nil {
			return nil, fmt.Errorf("unmarshal required %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(opt), &t.Optional); err != nil {
			return nil, fmt.Errorf("unmarshal optional %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(cons), &t.Constraints); err != nil {
			return nil, fmt.Errorf("unmarshal constraints %s: %w", t.ID, err)
		}
		t.Active = active == 1
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, t)
	}
	return out, rows.Err()
}
// #endregion load-templates

// #region open-registry
// OpenRegistry loads the registry from the store, seeding it with defaults
// when the store is empty.
func OpenRegistry(s *Store, defaults []Template, opts ...Option) (*Registry, error) {
	stored, err := s.LoadTemplates()
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		for _, t := range defaults {
			if err := s.SaveTemplate(t); err != nil {
				return nil, fmt.Errorf("seed templates: %w", err)
			}
		}
		stored = defaults
	}
	return NewRegistry(stored, append(opts, WithStore(s))...), nil
}
// #endregion open-registry

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
