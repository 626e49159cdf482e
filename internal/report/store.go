// Package report provides structured persistence and retrieval of case
// runs. Each finished run becomes a typed record that can be reloaded
// and inspected later.
package report

import (
	"time"

	"github.com/deixis/verdict/internal/expect"
	"github.com/deixis/verdict/internal/verify"
)

// Store persists and retrieves case records.
type Store interface {
	Save(rec *Record) error
	Load(runID string) (*Record, error)
}

// Record holds everything a finished run produced: the expectation it
// checked, the verdict, and the captured output. Output streams are
// stored decoded, so a record is plain text end to end.
type Record struct {
	ID string `json:"id"`

	// Expectation.
	Program      string   `json:"program"`
	Args         []string `json:"args,omitempty"`
	WantExitCode int      `json:"want_exit_code"`
	WantStdout   *string  `json:"want_stdout,omitempty"`

	// Outcome.
	Passed      bool          `json:"passed"`
	ExitCode    int           `json:"exit_code"`
	Abnormal    bool          `json:"abnormal,omitempty"`
	Status      string        `json:"status,omitempty"`
	Stdout      string        `json:"stdout"`
	Stderr      string        `json:"stderr"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// NewRecord builds a Record from a finished verification.
func NewRecord(id string, exp *expect.Expectation, v *verify.Verdict) *Record {
	return &Record{
		ID:           id,
		Program:      exp.Program,
		Args:         exp.Args,
		WantExitCode: exp.ExitCode,
		WantStdout:   exp.Stdout,
		Passed:       v.Passed,
		ExitCode:     v.Result.ExitCode,
		Abnormal:     v.Result.Abnormal,
		Status:       v.Result.Status,
		Stdout:       verify.Decode(v.Result.Stdout),
		Stderr:       verify.Decode(v.Result.Stderr),
		Diagnostics:  v.Diagnostics,
		Elapsed:      v.Result.Elapsed,
	}
}
