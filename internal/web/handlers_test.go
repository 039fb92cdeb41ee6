package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/ops"
	"github.com/hpungsan/warden/internal/roles"
	"github.com/hpungsan/warden/internal/submission"
)

func setupTest(t *testing.T) (http.Handler, *Handlers) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Roles = roles.Bindings{roles.Verified: "900"}

	srv := NewServer(database, cfg, "test", "127.0.0.1:0")
	return srv.Handler, &Handlers{db: database, cfg: cfg, version: "test"}
}

func seedRecord(t *testing.T, h *Handlers, cardID, userID int64) {
	t.Helper()
	r := &decision.Record{
		CardID:          cardID,
		ChannelID:       555,
		SubmitterID:     userID,
		DiagnosisStatus: submission.DiagnosisFormal,
		Gender:          submission.GenderOther,
		IsSenior:        true,
		Status:          decision.StatusPending,
	}
	if err := db.Insert(context.Background(), h.db, r); err != nil {
		t.Fatalf("seed record %d: %v", cardID, err)
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	handler, _ := setupTest(t)

	rec := get(t, handler, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
}

func TestHandleList(t *testing.T) {
	handler, h := setupTest(t)
	seedRecord(t, h, 1, 101)
	seedRecord(t, h, 2, 102)

	rec := get(t, handler, "/records?status=pending&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out ops.ListOutput
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.Total != 2 {
		t.Errorf("unexpected list: %+v", out)
	}
}

func TestHandleList_BadStatus(t *testing.T) {
	handler, _ := setupTest(t)

	rec := get(t, handler, "/records?status=archived")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeError(t, rec); code != "INVALID_REQUEST" {
		t.Errorf("code = %q", code)
	}
}

func TestHandleDetail(t *testing.T) {
	handler, h := setupTest(t)
	seedRecord(t, h, 4242, 101)

	rec := get(t, handler, "/records/4242")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var v ops.RecordView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.SubmitterID != "101" || !v.IsSenior {
		t.Errorf("unexpected record: %+v", v)
	}

	rec = get(t, handler, "/records/1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing record status = %d, want 404", rec.Code)
	}

	rec = get(t, handler, "/records/abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandleRoles(t *testing.T) {
	handler, h := setupTest(t)
	seedRecord(t, h, 4242, 101)

	rec := get(t, handler, "/records/4242/roles")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out ops.RolesOutput
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Grants) == 0 || !out.Grants[0].Bound {
		t.Errorf("unexpected grants: %+v", out.Grants)
	}
}

func TestHandleLookup(t *testing.T) {
	handler, h := setupTest(t)
	seedRecord(t, h, 4242, 101)

	rec := get(t, handler, "/members/101/record")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = get(t, handler, "/members/999/record")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := decodeError(t, rec); code != "RECORD_NOT_FOUND" {
		t.Errorf("code = %q", code)
	}
}

func TestNoWriteRoutes(t *testing.T) {
	handler, _ := setupTest(t)

	req := httptest.NewRequest(http.MethodDelete, "/records/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}
