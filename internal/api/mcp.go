package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gfbarros/vistaboard/internal/board"
	"github.com/gfbarros/vistaboard/internal/rotation"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Carousel *board.Carousel
}

// NewMCPServer exposes the board over MCP so assistants can query team
// status without scraping the display. All tools are read-only.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"vistaboard",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("vistaboard — rotating team activity board over a tracked task list."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_teams",
			mcp.WithDescription("List the rotation sequence: the Overview pseudo-team plus every team present in the current dataset."),
		),
		mcpListTeams(deps),
	)

	s.AddTool(
		mcp.NewTool("team_status",
			mcp.WithDescription("Full status board for one team: KPIs, status distribution, client breakdown."),
			mcp.WithString("team", mcp.Description("Team name; omit for the Overview board")),
		),
		mcpTeamStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("overdue_ranking",
			mcp.WithDescription("Operators ordered by overdue activity count, worst first. Empty means nobody is late."),
			mcp.WithString("team", mcp.Description("Team name; omit for all teams")),
		),
		mcpOverdueRanking(deps),
	)

	s.AddTool(
		mcp.NewTool("client_breakdown",
			mcp.WithDescription("Per-client activity counts by status, ordered by overdue count descending."),
			mcp.WithString("team", mcp.Description("Team name; omit for all teams")),
		),
		mcpClientBreakdown(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"board://current",
			"Current Board",
			mcp.WithResourceDescription("The view the carousel is showing right now, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCurrent(deps),
	)

	return s
}

func mcpListTeams(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		teams, err := deps.Carousel.Teams(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load teams: %v", err)), nil
		}
		return mcpJSON(map[string]any{"teams": teams})
	}
}

func teamView(ctx context.Context, deps MCPDeps, req mcp.CallToolRequest) (board.View, *mcp.CallToolResult) {
	team := req.GetString("team", rotation.Overview)
	v, ok, err := deps.Carousel.ViewFor(ctx, team)
	if err != nil {
		return board.View{}, mcpError(fmt.Sprintf("failed to build view: %v", err))
	}
	if !ok {
		return board.View{}, mcpError(fmt.Sprintf("unknown team %q", team))
	}
	return v, nil
}

func mcpTeamStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, errRes := teamView(ctx, deps, req)
		if errRes != nil {
			return errRes, nil
		}
		return mcpJSON(v)
	}
}

func mcpOverdueRanking(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, errRes := teamView(ctx, deps, req)
		if errRes != nil {
			return errRes, nil
		}
		return mcpJSON(map[string]any{"team": v.Team, "ranking": v.OverdueRanking})
	}
}

func mcpClientBreakdown(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, errRes := teamView(ctx, deps, req)
		if errRes != nil {
			return errRes, nil
		}
		return mcpJSON(map[string]any{"team": v.Team, "table": v.ClientTable, "pie": v.ClientPie})
	}
}

func mcpResourceCurrent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		v, err := deps.Carousel.Current(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build current view: %w", err)
		}

		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal view: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
