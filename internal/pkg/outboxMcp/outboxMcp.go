// Package outboxMcp exposes the simulated outbox to MCP clients, so the sales
// team's assistants can read new leads and reports.
package outboxMcp

import (
	"context"
	"net/http"

	"lead-chat/internal/pkg/outbox"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "lead-chat-outbox"
	serverVersion = "1.0.0"

	ListOutboxTool   = "list_outbox"
	LatestReportTool = "latest_report"

	defaultLimit = 20
)

type Reader interface {
	List(kind outbox.Kind, limit int) []outbox.Entry
}

type Server struct {
	reader    Reader
	mcpServer *server.MCPServer
}

func New(reader Reader) *Server {
	instance := &Server{
		reader:    reader,
		mcpServer: server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	instance.mcpServer.AddTool(mcp.NewTool(ListOutboxTool,
		mcp.WithDescription("List the newest simulated emails: lead notifications and technical reports."),
		mcp.WithString("kind",
			mcp.Description("Only return entries of this kind"),
			mcp.Enum(string(outbox.KindLead), string(outbox.KindReport)),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries, newest first"),
		),
	), instance.listOutbox)

	instance.mcpServer.AddTool(mcp.NewTool(LatestReportTool,
		mcp.WithDescription("Return the latest technical report recorded by the chat assistant."),
	), instance.latestReport)

	return instance
}

// Handler serves the MCP streamable HTTP transport.
func (instance *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(instance.mcpServer)
}

func (instance *Server) listOutbox(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := outbox.Kind(request.GetString("kind", ""))
	if kind != "" && kind != outbox.KindLead && kind != outbox.KindReport {
		return mcp.NewToolResultError("kind must be lead or report"), nil
	}

	limit := request.GetInt("limit", defaultLimit)
	entries := instance.reader.List(kind, limit)

	content, err := sonic.MarshalString(entries)
	if err != nil {
		log.Error().Err(err).Msg("sonic.MarshalString() failed")
		return nil, err
	}

	return mcp.NewToolResultText(content), nil
}

func (instance *Server) latestReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := instance.reader.List(outbox.KindReport, 1)
	if len(entries) == 0 {
		return mcp.NewToolResultText("No technical report has been recorded yet."), nil
	}

	report := entries[0]
	return mcp.NewToolResultText("Subject: " + report.Subject + "\nTo: " + report.To + "\n\n" + report.Body), nil
}
