package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(FeedbackSchema); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-feedback-tests
func TestLogFeedback_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := FeedbackEntry{
		TemplateID:       "tpl-1",
		Accepted:         true,
		Rating:           4,
		OldEffectiveness: 0.5,
		NewEffectiveness: 0.63,
		UsageCount:       1,
		Reason:           "accepted, rating 4",
		CreatedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogFeedback(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM feedback_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var templateID string
	var accepted, rating int
	var newEff float64
	db.QueryRow("SELECT template_id, accepted, rating, new_effectiveness FROM feedback_log").Scan(&templateID, &accepted, &rating, &newEff)
	if templateID != "tpl-1" {
		t.Errorf("expected template_id 'tpl-1', got %q", templateID)
	}
	if accepted != 1 {
		t.Errorf("expected accepted 1, got %d", accepted)
	}
	if rating != 4 {
		t.Errorf("expected rating 4, got %d", rating)
	}
	if newEff != 0.63 {
		t.Errorf("expected new_effectiveness 0.63, got %f", newEff)
	}
}

func TestLogFeedback_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := LogFeedback(db, FeedbackEntry{TemplateID: "tpl-2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM feedback_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogFeedback_NullOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogFeedback(db, FeedbackEntry{TemplateID: "tpl-3", Edited: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rating sql.NullInt64
	var reason sql.NullString
	var edited int
	db.QueryRow("SELECT rating, reason, edited FROM feedback_log").Scan(&rating, &reason, &edited)
	if rating.Valid {
		t.Error("expected NULL rating when no rating given")
	}
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
	if edited != 1 {
		t.Errorf("expected edited 1, got %d", edited)
	}
}

func TestLogFeedback_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	if err := LogFeedback(db, FeedbackEntry{TemplateID: "tpl-4"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

func TestListFeedback_NewestFirstWithLimit(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for i, eff := range []float64{0.6, 0.65, 0.7} {
		if err := LogFeedback(db, FeedbackEntry{TemplateID: "tpl-5", Accepted: true, Rating: i + 3, NewEffectiveness: eff, UsageCount: i + 1}); err != nil {
			t.Fatalf("log feedback: %v", err)
		}
	}
	LogFeedback(db, FeedbackEntry{TemplateID: "other", Edited: true})

	rows, err := ListFeedback(db, "tpl-5", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UsageCount != 3 || rows[0].Rating != 5 || !rows[0].Accepted {
		t.Errorf("expected newest row first, got %+v", rows[0])
	}

	all, err := ListFeedback(db, "other", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].Rating != 0 || !all[0].Edited {
		t.Errorf("unexpected rows: %+v", all)
	}
}

// #endregion log-feedback-tests

// #region logger-tests
func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "WARN", "error"} {
		log, err := New(lvl)
		if err != nil {
			t.Fatalf("New(%q): %v", lvl, err)
		}
		_ = log.Sync()
	}
	if _, err := New("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected non-nil logger")
	}
}

// #endregion logger-tests
