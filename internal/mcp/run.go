package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/verdict/internal/config"
	"github.com/deixis/verdict/internal/expect"
	"github.com/deixis/verdict/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runParams struct {
	Path     string   `json:"path,omitempty" jsonschema:"path to a YAML case file. Relative paths resolve against the client root. Mutually exclusive with command."`
	Command  []string `json:"command,omitempty" jsonschema:"inline command argv: the program followed by its arguments. Mutually exclusive with path."`
	Stdout   *string  `json:"stdout,omitempty" jsonschema:"exact stdout the command must produce. Omit to skip the stdout check."`
	ExitCode *int     `json:"exit_code,omitempty" jsonschema:"exit code the command must return. Default: 0."`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	hasInline := len(params.Command) > 0 || params.Stdout != nil || params.ExitCode != nil
	if params.Path != "" && hasInline {
		return errorResult("path and inline case parameters are mutually exclusive")
	}
	if params.Path == "" && len(params.Command) == 0 {
		return errorResult("either path or command is required")
	}

	var exp *expect.Expectation
	var err error
	if params.Path != "" {
		exp, err = config.Load(h.resolvePath(params.Path))
	} else {
		exp, err = expect.FromArgv(params.Command)
		if err == nil {
			if params.ExitCode != nil {
				exp.ExitCode = *params.ExitCode
			}
			exp.Stdout = params.Stdout
		}
	}
	if err != nil {
		return errorResult(fmt.Sprintf("invalid case: %v", err))
	}

	rec, err := h.harness.Run(ctx, exp, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}

	return textResult(formatRun(rec))
}

func formatRun(rec *report.Record) string {
	var b strings.Builder

	if rec.Passed {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Command: %s\n", commandLine(rec))
	if rec.Abnormal {
		fmt.Fprintf(&b, "Exit: %s (expected code %d)\n", rec.Status, rec.WantExitCode)
	} else {
		fmt.Fprintf(&b, "Exit: %d (expected %d)\n", rec.ExitCode, rec.WantExitCode)
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", rec.Elapsed.Round(time.Millisecond))

	if rec.Passed {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "All checks passed.")
	} else {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Diagnostics:")
		for _, d := range rec.Diagnostics {
			fmt.Fprintf(&b, "  %s\n", d)
		}
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Inspect with verdict_inspect(run_id=%q).\n", rec.ID)
	}

	return b.String()
}

// commandLine renders the record's argv in the quoted form used across
// all diagnostics.
func commandLine(rec *report.Record) string {
	exp := &expect.Expectation{Program: rec.Program, Args: rec.Args}
	return exp.String()
}
