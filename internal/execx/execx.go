// SPDX-License-Identifier: MPL-2.0

// Package execx runs external command-line tools synchronously with captured
// output. It exists so the git and gh wrappers can share one seam that tests
// replace with a fake.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type (
	// Runner executes one external command and captures its output.
	Runner interface {
		Run(ctx context.Context, req Request) (Output, error)
	}

	// Request describes one child-process invocation.
	Request struct {
		Name string
		Args []string
		Dir  string
		// Env, when non-nil, fully replaces the child's environment.
		Env []string
		// Stdin, when non-empty, is written to the child's standard input.
		Stdin string
	}

	// Output holds the captured process output.
	Output struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// OSRunner is the production Runner backed by os/exec.
	OSRunner struct{}
)

// Run executes the request synchronously and captures stdout/stderr. A
// non-zero exit is reported through Output.ExitCode, not as an error; errors
// mean the process could not be run at all.
func (OSRunner) Run(ctx context.Context, req Request) (Output, error) {
	cmd := exec.CommandContext(ctx, req.Name, req.Args...)
	cmd.Dir = req.Dir
	if req.Env != nil {
		cmd.Env = req.Env
	}
	if req.Stdin != "" {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return out, fmt.Errorf("running %s: %w", req.Name, err)
	}
	return out, nil
}

// LookPath reports whether the named tool is installed.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Environ returns a copy of the current process environment.
func Environ() []string {
	return os.Environ()
}
