package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/verdict/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from a verdict_run result"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	rec, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	return textResult(formatRecord(rec))
}

func formatRecord(rec *report.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	if rec.Passed {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Command: %s\n", commandLine(rec))
	fmt.Fprintf(&b, "Expected exit code: %d\n", rec.WantExitCode)
	if rec.WantStdout != nil {
		fmt.Fprintf(&b, "Expected stdout: %q\n", *rec.WantStdout)
	}
	if rec.Abnormal {
		fmt.Fprintf(&b, "Exit: %s\n", rec.Status)
	} else {
		fmt.Fprintf(&b, "Exit: %d\n", rec.ExitCode)
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", rec.Elapsed.Round(time.Millisecond))

	if len(rec.Diagnostics) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Diagnostics:")
		for _, d := range rec.Diagnostics {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}

	// Full captured streams, quoted so control bytes stay visible.
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "stdout: %q\n", rec.Stdout)
	fmt.Fprintf(&b, "stderr: %q\n", rec.Stderr)

	return b.String()
}
