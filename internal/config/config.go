// Package config loads the YAML case file that describes one command
// and its expected outcome.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deixis/verdict/internal/expect"
)

// Case mirrors the on-disk YAML document. Field names are kebab-case.
//
//	command:          # list form: program followed by its arguments
//	  - echo
//	  - foo
//	stdout: "foo\n"   # optional; omit to skip the stdout check
//	exit-code: 0      # optional; defaults to 0
//
// The command field also accepts a single scalar naming the program,
// as long as it contains no spaces.
type Case struct {
	Command  commandNode `yaml:"command"`
	Stdout   *string     `yaml:"stdout"`
	ExitCode *int        `yaml:"exit-code"`
}

// commandNode holds the raw command in whichever shape the document
// used: a sequence of tokens or a single scalar. The shape is decided
// by the YAML node kind, never by content sniffing.
type commandNode struct {
	argv   []string
	scalar string
	isList bool
}

func (c *commandNode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&c.argv); err != nil {
			return err
		}
		c.isList = true
		return nil
	case yaml.ScalarNode:
		return node.Decode(&c.scalar)
	default:
		return fmt.Errorf("line %d: command must be a list of strings or a single string", node.Line)
	}
}

// Expectation validates the parsed case and resolves defaults: a
// missing exit-code means 0, a missing stdout means "not checked".
func (c *Case) Expectation() (*expect.Expectation, error) {
	var (
		e   *expect.Expectation
		err error
	)
	if c.Command.isList {
		e, err = expect.FromArgv(c.Command.argv)
	} else {
		e, err = expect.FromString(c.Command.scalar)
	}
	if err != nil {
		return nil, err
	}
	if c.ExitCode != nil {
		e.ExitCode = *c.ExitCode
	}
	e.Stdout = c.Stdout
	return e, nil
}

// Parse decodes a case document and validates it into an Expectation.
func Parse(data []byte) (*expect.Expectation, error) {
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing case file: %w", err)
	}
	return c.Expectation()
}

// Load reads and parses the case file at path.
func Load(path string) (*expect.Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	return Parse(data)
}
