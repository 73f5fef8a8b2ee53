// Package cli runs the external hledger binary to verify journals.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("hledger not available")

// CheckError is returned when hledger rejects a journal. Output holds
// what hledger printed on stderr.
type CheckError struct {
	File   string
	Output string
	err    error
}

func (e *CheckError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("hledger check %s: %v", e.File, e.err)
	}
	return fmt.Sprintf("hledger check %s: %s", e.File, e.Output)
}

func (e *CheckError) Unwrap() error {
	return e.err
}

type Client struct {
	path    string
	timeout time.Duration
	version string
}

func NewClient(path string, timeout time.Duration) *Client {
	c := &Client{
		path:    path,
		timeout: timeout,
	}
	c.version = c.probeVersion()
	return c
}

func (c *Client) Available() bool {
	return c.version != ""
}

// Version returns the first line of "hledger --version", or "" when the
// binary could not be run.
func (c *Client) Version() string {
	return c.version
}

func (c *Client) Run(ctx context.Context, file string, args ...string) (string, error) {
	out, _, err := c.exec(ctx, file, args...)
	return out, err
}

func (c *Client) exec(ctx context.Context, file string, args ...string) (string, string, error) {
	if !c.Available() {
		return "", "", fmt.Errorf("%w at path: %s", ErrUnavailable, c.path)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmdArgs := make([]string, 0, len(args)+2)
	if file != "" {
		cmdArgs = append(cmdArgs, "-f", file)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, c.path, cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", "", fmt.Errorf("command timed out after %v: %w", c.timeout, ctx.Err())
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", "", fmt.Errorf("command cancelled: %w", ctx.Err())
		}
		errOut := strings.TrimSpace(stderr.String())
		return stdout.String(), errOut, fmt.Errorf("hledger error: %s: %w", errOut, err)
	}

	return stdout.String(), "", nil
}

// Check runs "hledger check" on file: every transaction must balance and
// every balance assertion must hold.
func (c *Client) Check(ctx context.Context, file string) error {
	_, errOut, err := c.exec(ctx, file, "check")
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("check %s: %w", file, err)
	}
	return &CheckError{File: file, Output: errOut, err: err}
}

func (c *Client) probeVersion() string {
	out, err := exec.Command(c.path, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "unknown"
	}
	return line
}
