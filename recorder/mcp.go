// CLAUDE:SUMMARY Registers all recflow MCP tools — start, stop, pause, resume, status, list/get/delete flows.
package recorder

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/recflow/kit"
)

// RegisterMCP registers recflow tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerStartTool(srv)
	s.registerStopTool(srv)
	s.registerPauseTool(srv)
	s.registerResumeTool(srv)
	s.registerStatusTool(srv)
	s.registerListFlowsTool(srv)
	s.registerGetFlowTool(srv)
	s.registerDeleteFlowTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func decodeInto[T any](req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r T
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

// --- start ---

type startRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

func (s *Service) registerStartTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_start",
		Description: "Start recording a browser session into a new Flow. Records the active tab, or opens a fresh tab when url is given.",
		InputSchema: inputSchema(map[string]any{
			"id":          map[string]any{"type": "string", "description": "Flow id (default: generated)"},
			"name":        map[string]any{"type": "string", "description": "Flow name"},
			"description": map[string]any{"type": "string", "description": "Flow description"},
			"url":         map[string]any{"type": "string", "description": "Open a new tab at this URL and record it"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*startRequest)
		sid, err := s.Rec.StartSession(ctx, StartOptions{
			ID: r.ID, Name: r.Name, Description: r.Description, URL: r.URL,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"session_id": sid}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[startRequest])
}

// --- stop ---

func (s *Service) registerStopTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_stop",
		Description: "Stop the active recording. Runs the flush-and-acknowledge barrier, saves the Flow, and returns it with barrier stats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		f, stats, err := s.Rec.StopSession(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"stats": stats, "flow": f}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

// --- pause / resume / status ---

func (s *Service) registerPauseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_pause",
		Description: "Pause the active recording. Pending fills and scrolls are flushed; subsequent interactions are ignored until resume.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		if err := s.Rec.PauseSession(ctx); err != nil {
			return nil, err
		}
		return s.Rec.Status(), nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

func (s *Service) registerResumeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_resume",
		Description: "Resume a paused recording.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		if err := s.Rec.ResumeSession(ctx); err != nil {
			return nil, err
		}
		return s.Rec.Status(), nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

func (s *Service) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_status",
		Description: "Report recording status: session id, step count, participating tabs.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(_ context.Context, _ any) (any, error) {
		return s.Rec.Status(), nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

// --- flows ---

type listFlowsRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (s *Service) registerListFlowsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_list_flows",
		Description: "List saved Flows, most recently updated first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max results (default 100)"},
		}, nil),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*listFlowsRequest)
		return s.Flows.List(ctx, r.Limit)
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[listFlowsRequest])
}

type flowIDRequest struct {
	ID string `json:"id"`
}

func (s *Service) registerGetFlowTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_get_flow",
		Description: "Fetch a saved Flow by id, including all steps and variable definitions.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Flow id"},
		}, []string{"id"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*flowIDRequest)
		f, err := s.Flows.Get(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return map[string]any{"found": false}, nil
		}
		return f, nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[flowIDRequest])
}

func (s *Service) registerDeleteFlowTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recflow_delete_flow",
		Description: "Delete a saved Flow by id.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Flow id"},
		}, []string{"id"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*flowIDRequest)
		if err := s.Flows.Delete(ctx, r.ID); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": r.ID}, nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[flowIDRequest])
}
