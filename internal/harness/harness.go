// Package harness wires verification, run identification, and record
// persistence into the single entry point shared by the MCP server and
// the CLI commands.
package harness

import (
	"context"
	"fmt"
	"io"

	"github.com/deixis/verdict/internal/expect"
	"github.com/deixis/verdict/internal/report"
	"github.com/deixis/verdict/internal/verify"
	"github.com/google/uuid"
)

// Harness holds shared dependencies for running cases.
type Harness struct {
	Store report.Store // nil disables persistence
}

// Run verifies one expectation, streaming diagnostics to sink as they
// are produced, and returns the record of the finished run. The record
// is saved to the store under a fresh run ID before it is returned.
func (h *Harness) Run(ctx context.Context, exp *expect.Expectation, sink io.Writer) (*report.Record, error) {
	runID := uuid.New().String()

	v := &verify.Verifier{Sink: sink}
	verdict, err := v.Verify(ctx, exp)
	if err != nil {
		return nil, err
	}

	rec := report.NewRecord(runID, exp, verdict)
	if h.Store != nil {
		if err := h.Store.Save(rec); err != nil {
			return nil, fmt.Errorf("saving record: %w", err)
		}
	}
	return rec, nil
}
