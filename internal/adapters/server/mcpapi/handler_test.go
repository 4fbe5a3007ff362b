package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/lanecal/internal/adapters/server/common"
	"github.com/hylla/lanecal/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
)

// memKV is an in-memory app.KVStore used by MCP tool tests.
type memKV map[string][]byte

func (m memKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Save(_ context.Context, key string, value []byte) error {
	m[key] = append([]byte(nil), value...)
	return nil
}

// newTestServer starts one MCP handler over a real store seeded with res-1 and res-2.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	n := 0
	ids := func() string {
		n++
		if n <= 2 {
			return fmt.Sprintf("res-%d", n)
		}
		return fmt.Sprintf("ev-%d", n-2)
	}
	store, err := app.OpenStore(context.Background(), memKV{}, ids, app.StoreConfig{SeedResources: 2})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	now := func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) }
	handler, err := NewHandler(Config{}, common.NewCalendarAdapter(store, nil, now))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC posts one JSON-RPC payload and decodes the response.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "lanecal-test",
				"version": "1.0.0",
			},
		},
	}
}

// callToolResultText decodes the first textual content block from a CallToolResult.
func callToolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result = nil, want non-nil")
	}
	if len(result.Content) == 0 {
		t.Fatalf("result content is empty")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] has unexpected type %T", result.Content[0])
	}
	return text.Text
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersCalendarTools verifies MCP tool discovery lists every calendar tool.
func TestHandlerRegistersCalendarTools(t *testing.T) {
	server := newTestServer(t)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, want := range []string{
		"lanecal.list_resources",
		"lanecal.add_resource",
		"lanecal.rename_resource",
		"lanecal.list_events",
		"lanecal.month_grid",
		"lanecal.create_event",
		"lanecal.move_event",
		"lanecal.resize_event",
		"lanecal.delete_event",
	} {
		if !slices.Contains(toolNames, want) {
			t.Fatalf("tool list missing %s: %#v", want, toolNames)
		}
	}
}

// TestHandlerEventToolCalls verifies create, resize, grid, and delete through tools/call.
func TestHandlerEventToolCalls(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()
	_, _ = postJSONRPC(t, client, server.URL, initializeRequest())

	_, resp := postJSONRPC(t, client, server.URL, callToolRequest(2, "lanecal.create_event", map[string]any{
		"resource_id": "res-1",
		"day":         "2024-03-05",
	}))
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("create_event returned error: %s", toolResultText(t, resp.Result))
	}
	created := toolResultStructured(t, resp.Result)
	if created["title"] != "Event 1" {
		t.Fatalf("created title = %#v, want Event 1", created["title"])
	}
	eventID, _ := created["id"].(string)
	if eventID != "ev-1" {
		t.Fatalf("created id = %q, want ev-1", eventID)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(3, "lanecal.resize_event", map[string]any{
		"event_id": eventID,
		"edge":     "start",
		"day":      "2024-03-09",
	}))
	if isErr, _ := resp.Result["isError"].(bool); !isErr {
		t.Fatalf("expected inverted resize to fail, got %#v", resp.Result)
	}
	if got := toolResultText(t, resp.Result); !strings.HasPrefix(got, "rejected:") {
		t.Fatalf("resize error text = %q, want rejected prefix", got)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(4, "lanecal.create_event", map[string]any{
		"resource_id": "res-1",
		"day":         "2024-03-05",
	}))
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("second create_event returned error: %s", toolResultText(t, resp.Result))
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(5, "lanecal.month_grid", map[string]any{}))
	grid := toolResultStructured(t, resp.Result)
	if grid["label"] != "March 2024" {
		t.Fatalf("grid label = %#v, want March 2024", grid["label"])
	}
	rows, _ := grid["rows"].([]any)
	if len(rows) != 2 {
		t.Fatalf("grid rows = %d, want 2", len(rows))
	}
	first, _ := rows[0].(map[string]any)
	if first["lane_count"] != float64(2) {
		t.Fatalf("lane_count = %#v, want 2", first["lane_count"])
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(6, "lanecal.delete_event", map[string]any{
		"event_id": eventID,
	}))
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("delete_event returned error: %s", toolResultText(t, resp.Result))
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(7, "lanecal.list_events", map[string]any{
		"month": "2024-03",
	}))
	listed := toolResultStructured(t, resp.Result)
	if events, _ := listed["events"].([]any); len(events) != 1 {
		t.Fatalf("events after delete = %#v, want 1", listed["events"])
	}
}

// TestHandlerResourceToolCalls verifies add and rename through tools/call.
func TestHandlerResourceToolCalls(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()
	_, _ = postJSONRPC(t, client, server.URL, initializeRequest())

	_, resp := postJSONRPC(t, client, server.URL, callToolRequest(2, "lanecal.add_resource", map[string]any{
		"name": "Crane",
	}))
	added := toolResultStructured(t, resp.Result)
	if added["name"] != "Crane" {
		t.Fatalf("added name = %#v, want Crane", added["name"])
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(3, "lanecal.rename_resource", map[string]any{
		"resource_id": "missing",
		"name":        "Loader",
	}))
	if got := toolResultText(t, resp.Result); !strings.HasPrefix(got, "not_found:") {
		t.Fatalf("rename error text = %q, want not_found prefix", got)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(4, "lanecal.rename_resource", map[string]any{
		"resource_id": "res-1",
	}))
	if isErr, _ := resp.Result["isError"].(bool); !isErr {
		t.Fatalf("expected missing name to fail, got %#v", resp.Result)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(5, "lanecal.list_resources", map[string]any{}))
	listed := toolResultStructured(t, resp.Result)
	if resources, _ := listed["resources"].([]any); len(resources) != 3 {
		t.Fatalf("resources = %#v, want 3", listed["resources"])
	}
}

// TestNewHandlerRequiresCalendar verifies constructor validation.
func TestNewHandlerRequiresCalendar(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("NewHandler() error = nil, want calendar service error")
	}
}

// TestNormalizeConfig verifies defaults and endpoint canonicalization.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{ServerName: "lanecal", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
		{
			name: "trims and slashes",
			in:   Config{ServerName: " cal ", ServerVersion: " 1.2 ", EndpointPath: "tools/mcp/"},
			want: Config{ServerName: "cal", ServerVersion: "1.2", EndpointPath: "/tools/mcp"},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeConfig(tt.in); got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestHandlerServeHTTPUnavailable verifies nil handler paths fail closed with 503.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler *Handler
	}{
		{name: "nil receiver", handler: nil},
		{name: "missing inner http handler", handler: &Handler{}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()

			tt.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
			if !strings.Contains(rec.Body.String(), "mcp handler unavailable") {
				t.Fatalf("body = %q, want mcp handler unavailable", rec.Body.String())
			}
		})
	}
}

// TestToolResultFromErrorMapping verifies deterministic error-to-tool-result mapping.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{name: "nil error", err: nil, wantPrefix: "unknown error"},
		{name: "invalid request", err: errors.Join(common.ErrInvalidRequest, errors.New("bad day")), wantPrefix: "invalid_request:"},
		{name: "not found", err: errors.Join(common.ErrNotFound, errors.New("missing")), wantPrefix: "not_found:"},
		{name: "rejected", err: errors.Join(common.ErrRejected, errors.New("inverted")), wantPrefix: "rejected:"},
		{name: "internal", err: errors.New("boom"), wantPrefix: "internal_error:"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResultFromError(tt.err)
			if !result.IsError {
				t.Fatalf("IsError = false, want true")
			}
			if got := callToolResultText(t, result); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}
