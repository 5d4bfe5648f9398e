// Package recovery implements the retry/resume/fallback state machine that
// sits above the Process Supervisor. Grounded on the teacher's fallback
// coordinator (isAdapterExecutionFailure / canFallback / getFallbackAdapter)
// generalized from a single Docker adapter swap to the registry's
// per-descriptor ResumeCommand and Fallback chain.
package recovery

import (
	"context"
	"io"
	"time"

	"github.com/andywolf/stigmergy/internal/registry"
	"github.com/andywolf/stigmergy/internal/security"
	"github.com/andywolf/stigmergy/internal/supervisor"
)

// resumeTimeout bounds how long a best-effort resume command may run
// before the coordinator gives up on it and proceeds to the next attempt.
const resumeTimeout = 10 * time.Second

// resumeRateLimit caps how many resume commands a single CLI may have
// fired against it within resumeRateWindow, so a flapping CLI whose resume
// command itself keeps failing cannot be hammered with restarts across
// many task invocations sharing one Coordinator.
const (
	resumeRateLimit  = 5
	resumeRateWindow = time.Minute
)

// State names the coordinator's terminal or transitional status for a
// single execute() call, mirroring the state machine's named states.
type State string

const (
	StateDone        State = "DONE_OK"
	StateResumed     State = "RESUMED"
	StateFallback    State = "FALLBACK"
	StateDoneFailure State = "DONE_FAIL"
)

// Policy controls retry and fallback behavior. Zero value is not usable
// directly; callers get sane defaults via NewPolicy.
type Policy struct {
	MaxRetries     int
	EnableResume   bool
	EnableFallback bool
}

// NewPolicy returns the state machine's documented defaults:
// MaxRetries=2, EnableResume=true, EnableFallback=true.
func NewPolicy() Policy {
	return Policy{MaxRetries: 2, EnableResume: true, EnableFallback: true}
}

// Runner executes a single CLI invocation. It is the Process Supervisor in
// production and a scripted fake in tests.
type Runner interface {
	Run(ctx context.Context, cli, binary string, argv []string, deadline time.Duration, stdout, stderr io.Writer) supervisor.ExecutionOutcome
}

// Lookup resolves a CLI name to its descriptor, as registry.Registry does.
type Lookup interface {
	Get(name string) (registry.CliDescriptor, bool)
}

// Coordinator drives the retry/resume/fallback state machine for one task
// across however many CLIs it takes to reach a terminal state.
type Coordinator struct {
	runner      Runner
	lookup      Lookup
	policy      Policy
	deadline    time.Duration
	resumeLimit *security.RateLimiter
}

// New creates a Coordinator. deadline is the per-invocation timeout passed
// through to the runner on every attempt.
func New(runner Runner, lookup Lookup, policy Policy, deadline time.Duration) *Coordinator {
	return &Coordinator{
		runner:      runner,
		lookup:      lookup,
		policy:      policy,
		deadline:    deadline,
		resumeLimit: security.NewRateLimiter(resumeRateLimit, resumeRateWindow),
	}
}

// Result is the outcome of a full Execute call, including however many
// Supervisor invocations the state machine needed to reach a terminal
// state.
type Result struct {
	FinalState State
	Attempts   []supervisor.ExecutionOutcome
	CliUsed    string
}

// Execute runs cli with argv under supervision, retrying via the
// descriptor's resume command and falling back to a sibling CLI per
// policy, until a terminal state is reached. It never recurses into its
// own fallback: a fallback attempt always runs with resume and further
// fallback disabled, bounding the total Supervisor invocations to at most
// MaxRetries+2 (spec Testable Property #7).
func (c *Coordinator) Execute(ctx context.Context, cli string, argv []string) Result {
	return c.execute(ctx, cli, argv, c.policy)
}

func (c *Coordinator) execute(ctx context.Context, cli string, argv []string, policy Policy) Result {
	d, ok := c.lookup.Get(cli)
	if !ok {
		return Result{FinalState: StateDoneFailure, CliUsed: cli}
	}

	result := Result{CliUsed: cli}

	outcome := c.runOnce(ctx, d, argv)
	result.Attempts = append(result.Attempts, outcome)

	if outcome.Success {
		result.FinalState = StateDone
		return result
	}

	retries := 0
	for policy.EnableResume && len(d.ResumeCommand) > 0 && retries < policy.MaxRetries {
		if !c.resumeLimit.Allow(d.Name) {
			break
		}
		c.attemptResume(ctx, d)
		retries++

		outcome = c.runOnce(ctx, d, argv)
		result.Attempts = append(result.Attempts, outcome)
		if outcome.Success {
			result.FinalState = StateResumed
			return result
		}
	}

	if policy.EnableFallback && d.Fallback != "" {
		if _, ok := c.lookup.Get(d.Fallback); ok {
			result.FinalState = StateFallback
			fallbackPolicy := Policy{MaxRetries: policy.MaxRetries, EnableResume: false, EnableFallback: false}
			fallbackResult := c.execute(ctx, d.Fallback, argv, fallbackPolicy)
			result.Attempts = append(result.Attempts, fallbackResult.Attempts...)
			result.CliUsed = fallbackResult.CliUsed
			result.FinalState = fallbackResult.FinalState
			return result
		}
	}

	result.FinalState = StateDoneFailure
	return result
}

func (c *Coordinator) runOnce(ctx context.Context, d registry.CliDescriptor, argv []string) supervisor.ExecutionOutcome {
	return c.runner.Run(ctx, d.Name, d.Binary, argv, c.deadline, nil, nil)
}

// attemptResume runs the descriptor's resume command best-effort: its
// outcome is never surfaced to the caller, only used to re-establish
// session context before the next attempt.
func (c *Coordinator) attemptResume(ctx context.Context, d registry.CliDescriptor) {
	resumeCtx, cancel := context.WithTimeout(ctx, resumeTimeout)
	defer cancel()
	_ = c.runner.Run(resumeCtx, d.Name, d.Binary, d.ResumeCommand, resumeTimeout, nil, nil)
}
