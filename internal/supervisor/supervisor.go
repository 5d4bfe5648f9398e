// Package supervisor spawns a CLI as a child process, streams its output to
// the caller while watching for interactive prompts, enforces a deadline,
// and reports a structured ExecutionOutcome. Grounded on the teacher's
// Docker-interactive invocation (io.MultiWriter fan-out of stdout/stderr,
// *exec.ExitError-based exit-code classification) generalized to spawn the
// target CLI binary directly instead of through a container.
package supervisor

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/andywolf/stigmergy/internal/errs"
)

// gracePeriod is how long a terminated child is given to exit on its own
// after a graceful signal before it is killed outright.
const gracePeriod = 5 * time.Second

// newCommand builds the *exec.Cmd to run. Tests substitute this with a
// fake-binary runner so Run can be exercised without real CLIs installed.
var newCommand = exec.Command

// Supervisor runs CLI invocations under supervision.
type Supervisor struct {
	promptDebounce time.Duration
}

// New creates a Supervisor. promptDebounce controls how long an
// interactive-prompt match must sit at the tail of stdout, unanswered,
// before the child is terminated.
func New(promptDebounce time.Duration) *Supervisor {
	return &Supervisor{promptDebounce: promptDebounce}
}

// Run spawns binary with argv, streams its stdout/stderr to stdout/stderr
// (if non-nil) while capturing both, and enforces deadline (0 = unbounded,
// stoppable only via ctx cancellation). It returns once the child has
// exited or been terminated.
func (s *Supervisor) Run(ctx context.Context, cli, binary string, argv []string, deadline time.Duration, stdout, stderr io.Writer) ExecutionOutcome {
	start := time.Now()

	cmd := newCommand(binary, argv...)
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(), "FORCE_COLOR=0")

	var stdoutBuf, stderrBuf bytes.Buffer

	interactionCh := make(chan struct{}, 1)
	scanner := NewPromptScanner(s.promptDebounce, func() {
		select {
		case interactionCh <- struct{}{}:
		default:
		}
	})

	stdoutWriters := []io.Writer{&stdoutBuf, scanner}
	if stdout != nil {
		stdoutWriters = append(stdoutWriters, stdout)
	}
	cmd.Stdout = io.MultiWriter(stdoutWriters...)

	stderrWriters := []io.Writer{&stderrBuf}
	if stderr != nil {
		stderrWriters = append(stderrWriters, stderr)
	}
	cmd.Stderr = io.MultiWriter(stderrWriters...)

	if err := cmd.Start(); err != nil {
		return ExecutionOutcome{
			Success:       false,
			NeedsRecovery: true,
			Error:         err.Error(),
			Elapsed:       time.Since(start),
			Cli:           cli,
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var deadlineC <-chan time.Time
	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		deadlineC = timer.C
	}

	interactionDetected := false
	killed := false

	select {
	case err := <-done:
		scanner.Stop()
		return s.classify(cli, err, stdoutBuf.String(), stderrBuf.String(), false, false, time.Since(start))

	case <-interactionCh:
		interactionDetected = true
		killed = true
		terminate(cmd, done)

	case <-deadlineC:
		killed = true
		terminate(cmd, done)

	case <-ctx.Done():
		killed = true
		terminate(cmd, done)
	}

	err := <-done
	return s.classify(cli, err, stdoutBuf.String(), stderrBuf.String(), interactionDetected, killed, time.Since(start))
}

// terminate sends a graceful termination signal, waits up to gracePeriod
// for the child to exit on its own, then kills it outright.
func terminate(cmd *exec.Cmd, done <-chan error) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)

	select {
	case <-done:
		return
	case <-time.After(gracePeriod):
		_ = cmd.Process.Kill()
	}
}

func (s *Supervisor) classify(cli string, err error, stdout, stderr string, interactionDetected, killed bool, elapsed time.Duration) ExecutionOutcome {
	outcome := ExecutionOutcome{
		Stdout:              stdout,
		Stderr:              stderr,
		InteractionDetected: interactionDetected,
		Elapsed:             elapsed,
		Cli:                 cli,
	}

	if interactionDetected {
		outcome.Success = false
		outcome.NeedsRecovery = true
		outcome.Error = errs.ErrInteractiveBlock.Error()
		return outcome
	}

	if killed {
		outcome.Success = false
		outcome.NeedsRecovery = true
		outcome.Error = errs.ErrTimeout.Error()
		return outcome
	}

	if err == nil {
		outcome.Success = true
		code := 0
		outcome.ExitCode = &code
		return outcome
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		outcome.ExitCode = &code
		outcome.Success = false
		outcome.NeedsRecovery = true
		if stderr != "" {
			outcome.Error = stderr
		} else {
			outcome.Error = errs.ErrExitFailure.Error()
		}
		return outcome
	}

	outcome.Success = false
	outcome.NeedsRecovery = true
	outcome.Error = err.Error()
	return outcome
}
