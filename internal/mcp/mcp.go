// Package mcp provides the Verdict MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"path/filepath"
	"time"

	"github.com/deixis/verdict"
	"github.com/deixis/verdict/internal/harness"
	"github.com/deixis/verdict/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	harness *harness.Harness
	store   report.Store
	workdir string // relative case paths resolve against this
}

// NewServer creates an MCP server with all Verdict tools registered.
// Relative case-file paths resolve against workdir until the client
// supplies a root during initialization.
func NewServer(store report.Store, workdir string) *mcp.Server {
	h := &handler{
		harness: &harness.Harness{Store: store},
		store:   store,
		workdir: workdir,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkdirFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "verdict", Version: verdict.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "verdict_run",
		Description: `Run a single process test case and return the verdict.

Pass path to run a YAML case file, or pass command (plus optional stdout and
exit_code) to run an inline case. A mismatch is a FAIL verdict, not an error.
Finished runs are stored for drill-down via verdict_inspect.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "verdict_validate",
		Description: `Parse a YAML case file without running it.

Use this to check that a case is well-formed and to see exactly what it
would verify. Nothing is executed.`,
	}, h.validateHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "verdict_inspect",
		Description: `Drill into a finished run from verdict_run.

Use the run_id from the tool output. Returns the full record, including
the captured stdout and stderr of the child process.`,
	}, h.inspectHandler)

	return s
}

// updateWorkdirFromRoots queries the client for MCP roots and adopts the
// first file root as the base directory for relative case paths. This is
// called during session initialization, before any tool calls.
func (h *handler) updateWorkdirFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil {
		return
	}
	if len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	h.workdir = u.Path
}

// resolvePath makes a relative case path absolute against the workdir.
func (h *handler) resolvePath(path string) string {
	if filepath.IsAbs(path) || h.workdir == "" {
		return path
	}
	return filepath.Join(h.workdir, path)
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
