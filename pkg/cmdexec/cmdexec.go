// Package cmdexec provides a generic runner for the external trust-store
// tools (openssl, security, certutil) used by the bundle builders.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding"
)

// Command describes a single external tool invocation.
type Command struct {
	// Args is the full argv of the command, Args[0] being the binary.
	Args []string
	// Dir is the working directory for the command.
	Dir string
	// Stdin is optional text supplied on standard input.
	Stdin string
	// Encoding optionally decodes stdout/stderr from a console-native
	// encoding. When nil output is used as-is (assumed UTF-8).
	Encoding encoding.Encoding
}

// Result holds the captured output of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. DefaultRunner runs real processes,
// MockRunner replays canned transcripts for tests.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// CommandFailure is returned when a command exits non-zero.
type CommandFailure struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (c *CommandFailure) Error() string {
	return fmt.Sprintf("command %q exited with code %d: %s", c.Cmd, c.ExitCode, strings.TrimSpace(c.Stderr))
}

// DefaultRunner executes commands on the real system.
type DefaultRunner struct{}

// Run executes the described command, blocking until it exits.
func (d *DefaultRunner) Run(ctx context.Context, command Command) (Result, error) {
	if len(command.Args) == 0 {
		return Result{}, fmt.Errorf("cmdexec: empty argv")
	}

	var outbuff, errbuff bytes.Buffer
	cmd := exec.CommandContext(ctx, command.Args[0])
	cmd.Args = command.Args
	cmd.Dir = command.Dir
	cmd.Stdout = &outbuff
	cmd.Stderr = &errbuff
	if command.Stdin != "" {
		cmd.Stdin = strings.NewReader(command.Stdin)
	}

	err := cmd.Run()

	stdout, decodeErr := decodeOutput(outbuff.Bytes(), command.Encoding)
	if decodeErr != nil {
		return Result{}, fmt.Errorf("cmdexec: could not decode output of %q: %v", command.Args[0], decodeErr)
	}
	stderr, _ := decodeOutput(errbuff.Bytes(), command.Encoding)

	result := Result{Stdout: stdout, Stderr: stderr}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, &CommandFailure{
				Cmd:      strings.Join(command.Args, " "),
				ExitCode: result.ExitCode,
				Stderr:   stderr,
			}
		}
		return result, err
	}
	return result, nil
}

// decodeOutput converts raw process output to a string, applying the
// optional console-native decoder.
func decodeOutput(raw []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		return string(raw), nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// LookPath reports the absolute path of the named binary, or "" when it
// is not present on the search path.
func LookPath(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
