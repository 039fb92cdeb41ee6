// Package mcp exposes the read-only record operations as MCP tools over stdio,
// so an assistant client can answer questions about past screenings.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/warden/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"record_list": {
		def: mcp.NewTool("record_list",
			mcp.WithDescription("List decision records, newest first."),
			mcp.WithString("status",
				mcp.Description("Only records in this status."),
				mcp.Enum("pending", "approved", "banned", "kicked", "left"),
			),
			mcp.WithNumber("limit", mcp.Description("Maximum records to return (default 20, max 100).")),
			mcp.WithNumber("offset", mcp.Description("Records to skip.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"record_show": {
		def: mcp.NewTool("record_show",
			mcp.WithDescription("Show the decision record behind a review card."),
			mcp.WithString("card_id", mcp.Required(), mcp.Description("Review card message id.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"record_lookup": {
		def: mcp.NewTool("record_lookup",
			mcp.WithDescription("Show a member's most recent decision record."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Member user id.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLookup },
	},
	"record_roles": {
		def: mcp.NewTool("record_roles",
			mcp.WithDescription("Preview the roles approving a review card would grant. Grants nothing."),
			mcp.WithString("card_id", mcp.Required(), mcp.Description("Review card message id.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoles },
	},
}

// NewServer creates an MCP server with the record tools registered.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"warden",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the MCP server on stdio until stdin closes.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(db, cfg, version))
}
