// Package expect defines the validated description of a single test
// case: the command to run and the outcome that counts as success.
package expect

import (
	"errors"
	"strings"
)

// Construction failures. The case-file loader surfaces these to the
// user, so the messages are written for the case author.
var (
	// ErrEmptyCommand reports a command with no program: an empty list,
	// an empty string, or a missing command field.
	ErrEmptyCommand = errors.New("command needs at least one element")

	// ErrAmbiguousCommand reports a command string containing spaces.
	// Splitting such a string would guess at the author's quoting, so
	// the list form is required instead.
	ErrAmbiguousCommand = errors.New("please define a list instead of a string")
)

// Expectation describes one command and the outcome that counts as
// success. It is constructed once per invocation and read-only after.
type Expectation struct {
	Program  string   // executable name or path, never empty
	Args     []string // positional arguments, possibly empty
	ExitCode int      // expected exit code; 0 unless the case says otherwise
	Stdout   *string  // expected stdout; nil means stdout is not checked
}

// FromArgv builds an Expectation from the list form of a command: the
// first element is the program, the rest are its arguments, passed
// through unchanged (no further splitting).
func FromArgv(argv []string) (*Expectation, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}
	return &Expectation{Program: argv[0], Args: argv[1:]}, nil
}

// FromString builds an Expectation from the scalar form of a command:
// the whole string is the program and there are no arguments. A string
// with interior spaces is rejected with ErrAmbiguousCommand rather
// than tokenized, since splitting on spaces loses quoting information.
func FromString(s string) (*Expectation, error) {
	if s == "" {
		return nil, ErrEmptyCommand
	}
	if strings.Contains(strings.TrimSpace(s), " ") {
		return nil, ErrAmbiguousCommand
	}
	return &Expectation{Program: s}, nil
}

// String renders the command with each token quoted, so arguments
// containing spaces stay readable in reports.
func (e *Expectation) String() string {
	var b strings.Builder
	b.WriteByte('\'')
	b.WriteString(e.Program)
	b.WriteByte('\'')
	for _, arg := range e.Args {
		b.WriteString(" '")
		b.WriteString(arg)
		b.WriteByte('\'')
	}
	return b.String()
}
