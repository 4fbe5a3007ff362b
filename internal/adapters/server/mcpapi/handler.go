// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/lanecal/internal/adapters/server/common"
	"github.com/hylla/lanecal/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the calendar tools.
func NewHandler(cfg Config, calendar common.CalendarService) (*Handler, error) {
	if calendar == nil {
		return nil, fmt.Errorf("calendar service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerResourceTools(mcpSrv, calendar)
	registerReadTools(mcpSrv, calendar)
	registerEventTools(mcpSrv, calendar)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "lanecal"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerResourceTools registers resource list, add, and rename tools.
func registerResourceTools(srv *mcpserver.MCPServer, calendar common.CalendarService) {
	srv.AddTool(
		mcp.NewTool(
			"lanecal.list_resources",
			mcp.WithDescription("List calendar resources (rows) in display order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resources, err := calendar.ListResources(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_resources", map[string]any{"resources": resources})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.add_resource",
			mcp.WithDescription("Append one resource row. An empty name becomes \"Resource N\"."),
			mcp.WithString("name", mcp.Description("Display name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resource, err := calendar.AddResource(ctx, common.AddResourceRequest{
				Name: req.GetString("name", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_resource", resource)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.rename_resource",
			mcp.WithDescription("Rename one resource row."),
			mcp.WithString("resource_id", mcp.Required(), mcp.Description("Resource identifier")),
			mcp.WithString("name", mcp.Required(), mcp.Description("New display name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resourceID, err := req.RequireString("resource_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			resource, err := calendar.RenameResource(ctx, common.RenameResourceRequest{
				ResourceID: resourceID,
				Name:       name,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("rename_resource", resource)
		},
	)
}

// registerReadTools registers event listing and month grid tools.
func registerReadTools(srv *mcpserver.MCPServer, calendar common.CalendarService) {
	srv.AddTool(
		mcp.NewTool(
			"lanecal.list_events",
			mcp.WithDescription("List events ordered by resource row then start date."),
			mcp.WithString("month", mcp.Description("Only events overlapping this month (YYYY-MM)")),
			mcp.WithString("resource_id", mcp.Description("Only events on this resource")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			events, err := calendar.ListEvents(ctx, common.ListEventsRequest{
				Month:      req.GetString("month", ""),
				ResourceID: req.GetString("resource_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_events", map[string]any{"events": events})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.month_grid",
			mcp.WithDescription("Return one month laid out per resource, with each event's lane."),
			mcp.WithString("month", mcp.Description("Month to lay out (YYYY-MM, defaults to the current month)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			grid, err := calendar.MonthGrid(ctx, common.MonthGridRequest{
				Month: req.GetString("month", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("month_grid", grid)
		},
	)
}

// registerEventTools registers event create, move, resize, and delete tools.
func registerEventTools(srv *mcpserver.MCPServer, calendar common.CalendarService) {
	srv.AddTool(
		mcp.NewTool(
			"lanecal.create_event",
			mcp.WithDescription("Create one single-day event titled \"Event N\"."),
			mcp.WithString("resource_id", mcp.Required(), mcp.Description("Resource identifier")),
			mcp.WithString("day", mcp.Required(), mcp.Description("Day (YYYY-MM-DD)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resourceID, err := req.RequireString("resource_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			day, err := req.RequireString("day")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := calendar.CreateEvent(ctx, common.CreateEventRequest{ResourceID: resourceID, Day: day})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_event", event)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.move_event",
			mcp.WithDescription("Move one event to a new start day and resource, keeping its duration."),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event identifier")),
			mcp.WithString("resource_id", mcp.Required(), mcp.Description("Target resource identifier")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("New start day (YYYY-MM-DD)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			eventID, err := req.RequireString("event_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			resourceID, err := req.RequireString("resource_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			start, err := req.RequireString("start_date")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := calendar.MoveEvent(ctx, common.MoveEventRequest{
				EventID:    eventID,
				ResourceID: resourceID,
				StartDate:  start,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_event", event)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.resize_event",
			mcp.WithDescription("Move one edge of an event. A start after the end is rejected."),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event identifier")),
			mcp.WithString("edge", mcp.Required(), mcp.Description("Edge to move"), mcp.Enum(string(domain.EdgeStart), string(domain.EdgeEnd))),
			mcp.WithString("day", mcp.Required(), mcp.Description("New edge day (YYYY-MM-DD)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			eventID, err := req.RequireString("event_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			edge, err := req.RequireString("edge")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			day, err := req.RequireString("day")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := calendar.ResizeEvent(ctx, common.ResizeEventRequest{
				EventID: eventID,
				Edge:    edge,
				Day:     day,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("resize_event", event)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"lanecal.delete_event",
			mcp.WithDescription("Delete one event. Deleting an absent event succeeds."),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			eventID, err := req.RequireString("event_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := calendar.DeleteEvent(ctx, common.DeleteEventRequest{EventID: eventID}); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_event", map[string]any{"deleted": eventID})
		},
	)
}

// jsonResult encodes one structured tool result.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrRejected):
		return mcp.NewToolResultError("rejected: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
