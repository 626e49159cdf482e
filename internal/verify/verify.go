// Package verify executes the command described by an Expectation and
// evaluates the captured outcome against it.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deixis/verdict/internal/expect"
)

// Result holds the captured outcome of one command execution.
type Result struct {
	Stdout   []byte        // captured stdout, raw
	Stderr   []byte        // captured stderr, raw
	ExitCode int           // exit code; -1 when Abnormal
	Abnormal bool          // no exit code was available (e.g. killed by a signal)
	Status   string        // OS description of an abnormal termination, e.g. "signal: killed"
	Elapsed  time.Duration // wall-clock duration of the child
}

// Verdict is the outcome of comparing one execution against an
// Expectation: a pass/fail flag plus the diagnostic lines explaining
// every mismatch found. Diagnostics are empty when the case passed.
type Verdict struct {
	Passed      bool
	Diagnostics []string
	Result      Result
}

// Verifier runs a single case. Diagnostic lines are written to Sink as
// they are produced, so a caller can stream them to a terminal or
// capture them in a buffer. A nil Sink discards them; the lines are
// always retained on the Verdict.
type Verifier struct {
	Sink io.Writer
}

// Verify launches the expected command, blocks until it terminates,
// and evaluates the outcome. Mismatches are reported through the
// returned Verdict, not as errors; an error means verification itself
// could not complete (spawn failure, stream or sink I/O).
//
// The child runs with stdin at /dev/null so it cannot block waiting
// for input. No timeout is imposed: a hung child hangs the call until
// ctx is cancelled by the caller.
func (v *Verifier) Verify(ctx context.Context, exp *expect.Expectation) (*Verdict, error) {
	res, err := run(ctx, exp)
	if err != nil {
		return nil, err
	}
	return v.evaluate(exp, res)
}

// run spawns the command and captures its termination status and both
// output streams.
func run(ctx context.Context, exp *expect.Expectation) (*Result, error) {
	cmd := exec.CommandContext(ctx, exp.Program, exp.Args...)

	// Stdin stays nil, so the child reads immediate EOF instead of
	// blocking on input. Stdout and stderr are captured separately;
	// os/exec drains both pipes concurrently, so a full pipe buffer on
	// one stream cannot deadlock the other.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	res := &Result{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Elapsed: time.Since(start),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Binary not found or other exec error.
			return nil, fmt.Errorf("executing %s: %w", exp.Program, runErr)
		}
		if exitErr.Exited() {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Killed by a signal: there is no exit code to compare.
			res.ExitCode = -1
			res.Abnormal = true
			res.Status = exitErr.ProcessState.String()
		}
	}

	return res, nil
}

// evaluate applies the exit-code and stdout checks and emits
// diagnostics for every mismatch.
func (v *Verifier) evaluate(exp *expect.Expectation, res *Result) (*Verdict, error) {
	d := &diagWriter{sink: v.Sink}
	failed := false

	if res.Abnormal {
		// Abnormal termination fails unconditionally: whatever code
		// the case expected, none was produced.
		d.linef("Process terminated abnormally (%s). Expected exit code %d", res.Status, exp.ExitCode)
		failed = true
	} else if res.ExitCode != exp.ExitCode {
		d.linef("Wrong or unexpected exit code %d. Expected %d", res.ExitCode, exp.ExitCode)
		failed = true
	}

	stdout := Decode(res.Stdout)
	if exp.Stdout != nil && stdout != *exp.Stdout {
		d.linef("Got unexpected stdout output.")
		d.linef("expected: %q", *exp.Stdout)
		d.linef("got     : %q", stdout)
		failed = true
	}

	if failed {
		// Spill both streams in full so the failure can be debugged
		// even when only the exit code mismatched.
		d.linef("stdout: %q", stdout)
		d.linef("stderr: %q", Decode(res.Stderr))
	}

	if d.err != nil {
		return nil, d.err
	}

	return &Verdict{
		Passed:      !failed,
		Diagnostics: d.lines,
		Result:      *res,
	}, nil
}

// Decode converts captured bytes to a string, replacing invalid UTF-8
// sequences with U+FFFD rather than failing.
func Decode(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// diagWriter accumulates diagnostic lines and mirrors each one to the
// sink. The first sink error sticks and stops further output.
type diagWriter struct {
	sink  io.Writer
	lines []string
	err   error
}

func (d *diagWriter) linef(format string, args ...any) {
	if d.err != nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	d.lines = append(d.lines, line)
	if d.sink == nil {
		return
	}
	if _, err := io.WriteString(d.sink, line+"\n"); err != nil {
		d.err = fmt.Errorf("writing diagnostics: %w", err)
	}
}
