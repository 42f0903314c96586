package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrCommandNotFound is returned when the executable is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// Runner abstracts command execution so callers can be tested without
// real subprocesses.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec. Each command gets its own
// process group, killed as a whole when ctx is done.
type ExecRunner struct{}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- tool names are fixed by callers
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting %s: %w", name, err)
	}

	stderrContent, readErr := io.ReadAll(stderrPipe)

	err = cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = fmt.Errorf("%s: %w", name, ctxErr)
	}
	if err == nil && readErr != nil {
		err = fmt.Errorf("reading stderr: %w", readErr)
	}
	return stdout.String(), string(stderrContent), err
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
