// Package orchestrator composes the registry, analyser, synthesiser,
// supervisor, recovery coordinator and Status Board into the three
// invocation modes the command-line surface exposes. Grounded on the
// teacher's internal/controller/orchestrator.go and phase_loop.go
// iterate-then-record shape, and on container_pool.go's bounded-concurrency
// fan-out for parallel mode.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andywolf/stigmergy/internal/analyser"
	"github.com/andywolf/stigmergy/internal/board"
	"github.com/andywolf/stigmergy/internal/errs"
	"github.com/andywolf/stigmergy/internal/recovery"
	"github.com/andywolf/stigmergy/internal/registry"
	"github.com/andywolf/stigmergy/internal/supervisor"
	"github.com/andywolf/stigmergy/internal/synthesiser"
)

// Mode selects how execute() fans out across one or more CLIs.
type Mode string

const (
	ModeSingle       Mode = "single"
	ModeAutoFallback Mode = "autoFallback"
	ModeParallel     Mode = "parallel"
)

// defaultParallelism bounds concurrent logical tasks in parallel mode.
const defaultParallelism = 3

// Options controls a single Execute call.
type Options struct {
	// IncludeContext overrides the mode's default context-injection
	// behaviour when non-nil (default on for autoFallback and parallel,
	// off for single).
	IncludeContext *bool
	// Parallelism overrides defaultParallelism for ModeParallel.
	Parallelism int
}

// Outcome is the result of running one CLI to a terminal state.
type Outcome struct {
	Cli        string
	Success    bool
	FinalState recovery.State
	Attempts   []supervisor.ExecutionOutcome
}

// AggregateOutcome is the result of an Execute call, one Outcome per CLI
// involved (one for single/autoFallback, one per list entry for parallel).
type AggregateOutcome struct {
	Outcomes []Outcome
}

// AllFailed reports whether every CLI in the aggregate failed.
func (a AggregateOutcome) AllFailed() bool {
	for _, o := range a.Outcomes {
		if o.Success {
			return false
		}
	}
	return len(a.Outcomes) > 0
}

// Orchestrator wires the other components together for one project.
type Orchestrator struct {
	registry   *registry.Registry
	analyser   *analyser.Analyser
	supervisor recovery.Runner
	board      *board.Store
	policy     recovery.Policy
	deadline   time.Duration
	parallel   int
}

// New creates an Orchestrator. sup is the Process Supervisor interface
// used to run every invocation, both directly (single mode) and via the
// Recovery Coordinator (autoFallback/parallel modes).
func New(reg *registry.Registry, an *analyser.Analyser, sup recovery.Runner, b *board.Store, policy recovery.Policy, deadline time.Duration, parallelism int) *Orchestrator {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &Orchestrator{registry: reg, analyser: an, supervisor: sup, board: b, policy: policy, deadline: deadline, parallel: parallelism}
}

// Execute runs task against cli (single/autoFallback) or cliList
// (parallel), per mode.
func (o *Orchestrator) Execute(ctx context.Context, task string, mode Mode, cli string, cliList []string, opts Options) (AggregateOutcome, error) {
	switch mode {
	case ModeSingle:
		outcome, err := o.runSingle(ctx, cli, task, includeContext(opts, false))
		return AggregateOutcome{Outcomes: []Outcome{outcome}}, err

	case ModeAutoFallback:
		outcome, err := o.runAutoFallback(ctx, cli, task, includeContext(opts, true))
		return AggregateOutcome{Outcomes: []Outcome{outcome}}, err

	case ModeParallel:
		return o.runParallel(ctx, cliList, task, opts)

	default:
		return AggregateOutcome{}, fmt.Errorf("%w: unknown mode %q", errs.ErrMisconfiguration, mode)
	}
}

func includeContext(opts Options, defaultOn bool) bool {
	if opts.IncludeContext != nil {
		return *opts.IncludeContext
	}
	return defaultOn
}

// runSingle performs analyse -> synthesise -> supervise, with no recovery
// or fallback.
func (o *Orchestrator) runSingle(ctx context.Context, cli, task string, includeCtx bool) (Outcome, error) {
	d, argv, err := o.prepare(ctx, cli, task, includeCtx)
	if err != nil {
		return Outcome{Cli: cli}, err
	}

	taskID := uuid.NewString()
	o.recordStart(cli, taskID, task)

	result := o.supervisor.Run(ctx, d.Name, d.Binary, argv, o.deadline, nil, nil)
	o.recordOutcome(cli, taskID, task, result.Success)

	state := recovery.StateDone
	if !result.Success {
		state = recovery.StateDoneFailure
	}
	return Outcome{Cli: cli, Success: result.Success, FinalState: state, Attempts: []supervisor.ExecutionOutcome{result}}, nil
}

// runAutoFallback performs analyse -> synthesise -> RecoveryCoordinator.
func (o *Orchestrator) runAutoFallback(ctx context.Context, cli, task string, includeCtx bool) (Outcome, error) {
	d, argv, err := o.prepare(ctx, cli, task, includeCtx)
	if err != nil {
		return Outcome{Cli: cli}, err
	}

	taskID := uuid.NewString()
	o.recordStart(cli, taskID, task)

	coordinator := recovery.New(o.supervisor, o.registry, o.policy, o.deadline)
	result := coordinator.Execute(ctx, d.Name, argv)

	success := result.FinalState == recovery.StateDone || result.FinalState == recovery.StateResumed
	o.recordOutcome(result.CliUsed, taskID, task, success)

	return Outcome{Cli: result.CliUsed, Success: success, FinalState: result.FinalState, Attempts: result.Attempts}, nil
}

// runParallel runs autoFallback(cli) for each entry in cliList
// concurrently, bounded by o.parallel (or opts.Parallelism if set).
func (o *Orchestrator) runParallel(ctx context.Context, cliList []string, task string, opts Options) (AggregateOutcome, error) {
	if len(cliList) == 0 {
		return AggregateOutcome{}, fmt.Errorf("%w: parallel mode requires at least one cli", errs.ErrMisconfiguration)
	}

	width := o.parallel
	if opts.Parallelism > 0 {
		width = opts.Parallelism
	}

	sem := make(chan struct{}, width)
	var wg sync.WaitGroup
	outcomes := make([]Outcome, len(cliList))

	includeCtx := includeContext(opts, true)

	for i, cli := range cliList {
		wg.Add(1)
		go func(i int, cli string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome, err := o.runAutoFallback(ctx, cli, task, includeCtx)
			if err != nil {
				outcome = Outcome{Cli: cli, Success: false, FinalState: recovery.StateDoneFailure}
			}
			outcomes[i] = outcome
		}(i, cli)
	}
	wg.Wait()

	return AggregateOutcome{Outcomes: outcomes}, nil
}

// prepare resolves cli's descriptor, analyses it, and synthesises argv for
// task, optionally prepending the Status Board's context summary.
func (o *Orchestrator) prepare(ctx context.Context, cli, task string, includeCtx bool) (registry.CliDescriptor, []string, error) {
	d, ok := o.registry.Get(cli)
	if !ok {
		return registry.CliDescriptor{}, nil, fmt.Errorf("%w: unknown cli %q", errs.ErrMisconfiguration, cli)
	}

	pattern, err := o.analyser.Analyse(ctx, d, analyser.Options{})
	if err == nil && pattern.Success {
		if d.PromptFlag == "" && pattern.PromptFlag != "" {
			d.PromptFlag = pattern.PromptFlag
		}
	}

	synCtx := synthesiser.Context{}
	if includeCtx && o.board != nil {
		if summary, err := o.board.ContextSummary(board.ContextSummaryOptions{IncludeFindings: true, IncludeDecisions: true}); err == nil && summary != "" {
			synCtx.IncludeContext = true
			synCtx.ContextHeader = summary
		}
	}

	argv := synthesiser.Synthesise(d, task, synCtx)
	return d, argv, nil
}

func (o *Orchestrator) recordStart(cli, taskID, task string) {
	if o.board == nil {
		return
	}
	_ = o.board.RecordTask(cli, taskID, task, nil)
}

func (o *Orchestrator) recordOutcome(cli, taskID, task string, success bool) {
	if o.board == nil {
		return
	}
	_ = o.board.RecordTask(cli, taskID, task, &board.TaskOutcome{Success: success})
}
