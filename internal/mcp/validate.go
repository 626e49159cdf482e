package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/verdict/internal/config"
	"github.com/deixis/verdict/internal/expect"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateParams struct {
	Path string `json:"path" jsonschema:"path to the YAML case file to validate. Relative paths resolve against the client root."`
}

func (h *handler) validateHandler(ctx context.Context, req *mcp.CallToolRequest, params validateParams) (*mcp.CallToolResult, any, error) {
	if params.Path == "" {
		return errorResult("path is required")
	}

	exp, err := config.Load(h.resolvePath(params.Path))
	if err != nil {
		return errorResult(fmt.Sprintf("invalid case: %v", err))
	}

	return textResult(formatCase(exp))
}

func formatCase(exp *expect.Expectation) string {
	var b strings.Builder

	fmt.Fprintln(&b, "Valid case.")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Command: %s\n", exp.String())
	fmt.Fprintf(&b, "Expected exit code: %d\n", exp.ExitCode)
	if exp.Stdout != nil {
		fmt.Fprintf(&b, "Expected stdout: %q\n", *exp.Stdout)
	} else {
		fmt.Fprintln(&b, "Stdout: not checked")
	}

	return b.String()
}
