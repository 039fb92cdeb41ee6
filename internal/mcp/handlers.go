package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// ListRequest represents the arguments for record_list.
type ListRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// CardRequest addresses a record by review card.
type CardRequest struct {
	CardID string `json:"card_id"`
}

// MemberRequest addresses a record by submitter.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// HandleList handles the record_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleShow handles the record_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	cardID, err := ops.ParseID("card_id", input.CardID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Show(ctx, h.db, cardID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLookup handles the record_lookup tool call.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MemberRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	userID, err := ops.ParseID("user_id", input.UserID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Lookup(ctx, h.db, userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRoles handles the record_roles tool call.
func (h *Handlers) HandleRoles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	cardID, err := ops.ParseID("card_id", input.CardID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.PreviewRoles(ctx, h.db, h.cfg.Roles, cardID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    string(errors.ErrInternal),
		"message": "an internal error occurred",
		"status":  500,
	}

	var wErr *errors.WardenError
	if stderrors.As(err, &wErr) && wErr.Code != errors.ErrInternal {
		errorObj = map[string]any{
			"code":    string(wErr.Code),
			"message": wErr.Message,
			"status":  wErr.Status,
		}
		if wErr.Details != nil {
			errorObj["details"] = wErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
