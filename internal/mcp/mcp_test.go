package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/roles"
	"github.com/hpungsan/warden/internal/submission"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Roles = roles.Bindings{roles.Verified: "900", roles.PeerSupport: "901"}
	return database, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func seed(t *testing.T, database *sql.DB, cardID, userID, createdAt int64) {
	t.Helper()
	r := &decision.Record{
		CardID:          cardID,
		ChannelID:       555,
		SubmitterID:     userID,
		DiagnosisStatus: submission.DiagnosisFamilyOrFriend,
		Gender:          submission.GenderFemale,
		IsFemale:        true,
		IsAdult:         true,
		Status:          decision.StatusPending,
		CreatedAt:       createdAt,
	}
	if err := db.Insert(context.Background(), database, r); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content[0].(mcp.TextContent).Text)
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error result")
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error: %v", err)
	}
	if payload.Error.Code != expectedCode {
		t.Errorf("error code = %q, want %q", payload.Error.Code, expectedCode)
	}
}

func TestHandleList(t *testing.T) {
	database, cfg := testSetup(t)
	seed(t, database, 1, 101, 1000)
	seed(t, database, 2, 102, 2000)
	h := NewHandlers(database, cfg)

	result, err := h.HandleList(context.Background(), makeRequest(map[string]any{"limit": 1}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	items := output["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].(map[string]any)["card_id"] != "2" {
		t.Errorf("first item = %v, want card 2", items[0])
	}
	pagination := output["pagination"].(map[string]any)
	if pagination["has_more"] != true {
		t.Errorf("has_more = %v, want true", pagination["has_more"])
	}
}

func TestHandleList_InvalidStatus(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)

	result, err := h.HandleList(context.Background(), makeRequest(map[string]any{"status": "archived"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleShowAndLookup(t *testing.T) {
	database, cfg := testSetup(t)
	seed(t, database, 4242, 101, 1000)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	result, err := h.HandleShow(ctx, makeRequest(map[string]any{"card_id": "4242"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := parseOutput(t, result)["submitter_id"]; got != "101" {
		t.Errorf("submitter_id = %v, want 101", got)
	}

	result, err = h.HandleLookup(ctx, makeRequest(map[string]any{"user_id": "101"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := parseOutput(t, result)["card_id"]; got != "4242" {
		t.Errorf("card_id = %v, want 4242", got)
	}

	result, _ = h.HandleShow(ctx, makeRequest(map[string]any{"card_id": "1"}))
	assertErrorCode(t, result, "RECORD_NOT_FOUND")

	result, _ = h.HandleLookup(ctx, makeRequest(map[string]any{"user_id": "nobody"}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleShow(ctx, makeRequest(map[string]any{"card_id": 4242}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleRoles(t *testing.T) {
	database, cfg := testSetup(t)
	seed(t, database, 4242, 101, 1000)
	h := NewHandlers(database, cfg)

	result, err := h.HandleRoles(context.Background(), makeRequest(map[string]any{"card_id": "4242"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	grants := parseOutput(t, result)["grants"].([]any)

	bound := map[string]bool{}
	for _, g := range grants {
		m := g.(map[string]any)
		bound[m["kind"].(string)] = m["bound"].(bool)
	}
	if !bound[string(roles.Verified)] || !bound[string(roles.PeerSupport)] {
		t.Errorf("expected verified and peer_support bound, got %v", bound)
	}
	if bound[string(roles.FemaleAdult)] {
		t.Errorf("female_adult should be unbound, got %v", bound)
	}
}

func TestServerRegistration(t *testing.T) {
	database, cfg := testSetup(t)

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	expected := []string{"record_list", "record_show", "record_lookup", "record_roles"}
	if len(tools) != len(expected) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expected))
	}
	for _, name := range expected {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}
