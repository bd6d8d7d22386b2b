package executor

import (
	"bytes"
	"errors"
	"os/exec"
)

// CommandResult holds the fully captured outcome of one child process.
// Output is buffered, not streamed: build-script stdout must be parsed
// whole after exit, and failure reporting surfaces both streams at once.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs one external program synchronously and captures its
// output. An error is returned only when the process could not be run at
// all; a non-zero exit is reported through ExitCode.
type CommandRunner interface {
	Run(program string, args []string, env []string, cwd string) (CommandResult, error)
}

// execRunner is the production CommandRunner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(program string, args []string, env []string, cwd string) (CommandResult, error) {
	cmd := exec.Command(program, args...)
	cmd.Dir = cwd
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}
