package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region feedback-entry
// FeedbackEntry is a single row in the feedback_log table.
type FeedbackEntry struct {
	TemplateID       string    `json:"template_id"`
	Accepted         bool      `json:"accepted"`
	Edited           bool      `json:"edited"`
	Rating           int       `json:"rating,omitempty"` // 0 = no rating
	OldEffectiveness float64   `json:"old_effectiveness"`
	NewEffectiveness float64   `json:"new_effectiveness"`
	UsageCount       int       `json:"usage_count"`
	Reason           string    `json:"reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
// #endregion feedback-entry

// #region schema
// FeedbackSchema creates the feedback_log table.
const FeedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback_log (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	template_id       TEXT NOT NULL,
	accepted          INTEGER NOT NULL,
	edited            INTEGER NOT NULL,
	rating            INTEGER,
	old_effectiveness REAL NOT NULL,
	new_effectiveness REAL NOT NULL,
	usage_count       INTEGER NOT NULL,
	reason            TEXT,
	created_at        TEXT NOT NULL
);
`
// #endregion schema

// #region log-feedback
// LogFeedback writes a feedback entry to the feedback_log table.
func LogFeedback(db *sql.DB, entry FeedbackEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO feedback_log (template_id, accepted, edited, rating, old_effectiveness, new_effectiveness, usage_count, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TemplateID,
		boolInt(entry.Accepted),
		boolInt(entry.Edited),
		nullIfZero(entry.Rating),
		entry.OldEffectiveness,
		entry.NewEffectiveness,
		entry.UsageCount,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log feedback: %w", err)
	}
	return nil
}
// #endregion log-feedback

// #region list-feedback
// ListFeedback returns the newest feedback rows for a template, newest first.
// last <= 0 returns every row.
func ListFeedback(db *sql.DB, templateID string, last int) ([]FeedbackEntry, error) {
	query := `SELECT template_id, accepted, edited, rating, old_effectiveness, new_effectiveness, usage_count, reason, created_at
		 FROM feedback_log WHERE template_id = ? ORDER BY id DESC`
	args := []interface{}{templateID}
	if last > 0 {
		query += ` LIMIT ?`
		args = append(args, last)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []FeedbackEntry
	for rows.Next() {
		var e FeedbackEntry
		var accepted, edited int
		var rating sql.NullInt64
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.TemplateID, &accepted, &edited, &rating, &e.OldEffectiveness,
			&e.NewEffectiveness, &e.UsageCount, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		e.Accepted = accepted == 1
		e.Edited = edited == 1
		e.Rating = int(rating.Int64)
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-feedback

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
