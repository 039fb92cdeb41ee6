package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/decision"
)

func mustShowRecord(t *testing.T, database *sql.DB, cardID int64) *decision.Record {
	t.Helper()
	r, err := db.GetByCardID(context.Background(), database, cardID)
	if err != nil {
		t.Fatalf("GetByCardID failed: %v", err)
	}
	return r
}

func backdateResolution(t *testing.T, database *sql.DB, cardID int64, days int) {
	t.Helper()
	ts := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	if _, err := database.Exec("UPDATE formanswers SET resolved_at = ? WHERE message_id = ?", ts, cardID); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
}

func TestPurge_ResolvedOnly(t *testing.T) {
	database := setupDB(t)
	insertRecord(t, database, 1, 101, 1000)
	insertRecord(t, database, 2, 102, 1000)
	insertRecord(t, database, 3, 103, 1000)
	resolve(t, database, 1, decision.StatusApproved)
	resolve(t, database, 2, decision.StatusLeft)

	out, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 2 {
		t.Errorf("Purged = %d, want 2", out.Purged)
	}

	if r := mustShowRecord(t, database, 3); r.Status != decision.StatusPending {
		t.Errorf("pending record status = %q", r.Status)
	}
}

func TestPurge_OlderThan(t *testing.T) {
	database := setupDB(t)
	insertRecord(t, database, 1, 101, 1000)
	insertRecord(t, database, 2, 102, 1000)
	resolve(t, database, 1, decision.StatusBanned)
	resolve(t, database, 2, decision.StatusKicked)
	backdateResolution(t, database, 1, 40)

	days := 30
	out, err := Purge(context.Background(), database, PurgeInput{OlderThanDays: &days})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("Purged = %d, want 1", out.Purged)
	}
	mustShowRecord(t, database, 2)
}

func TestFormatPurgeMessage(t *testing.T) {
	days := 7
	tests := []struct {
		count int
		days  *int
		want  string
	}{
		{0, nil, "No resolved records to purge"},
		{1, nil, "Permanently deleted 1 resolved record"},
		{3, &days, "Permanently deleted 3 resolved records (resolved more than 7 days ago)"},
	}
	for _, tt := range tests {
		if got := formatPurgeMessage(tt.count, tt.days); got != tt.want {
			t.Errorf("formatPurgeMessage(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}
