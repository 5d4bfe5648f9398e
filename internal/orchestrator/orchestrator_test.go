package orchestrator

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/andywolf/stigmergy/internal/analyser"
	"github.com/andywolf/stigmergy/internal/board"
	"github.com/andywolf/stigmergy/internal/recovery"
	"github.com/andywolf/stigmergy/internal/registry"
	"github.com/andywolf/stigmergy/internal/supervisor"
)

// scriptedRunner returns canned outcomes keyed by cli name, falling back
// to failure for anything not scripted.
type scriptedRunner struct {
	outcomes map[string][]supervisor.ExecutionOutcome
	calls    []string
}

func (r *scriptedRunner) Run(ctx context.Context, cli, binary string, argv []string, deadline time.Duration, stdout, stderr io.Writer) supervisor.ExecutionOutcome {
	r.calls = append(r.calls, cli)
	queue := r.outcomes[cli]
	if len(queue) == 0 {
		return supervisor.ExecutionOutcome{Success: false, NeedsRecovery: true}
	}
	next := queue[0]
	r.outcomes[cli] = queue[1:]
	return next
}

func newTestRegistry() *registry.Registry {
	reg := registry.New()
	reg.Apply(map[string]registry.Override{
		"claude": {Binary: "claude"},
	})
	return reg
}

func newTestBoard(t *testing.T) *board.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.md")
	s := board.New(path, time.Second)
	if err := s.Initialize(board.ProjectInfo{Name: "test"}); err != nil {
		t.Fatalf("board.Initialize() error: %v", err)
	}
	return s
}

func TestExecuteSingleModeNoRecovery(t *testing.T) {
	reg := newTestRegistry()
	runner := &scriptedRunner{outcomes: map[string][]supervisor.ExecutionOutcome{
		"claude": {{Success: false, NeedsRecovery: true}},
	}}
	b := newTestBoard(t)
	store := analyser.NewStore(filepath.Join(t.TempDir(), "patterns.json"))
	o := New(reg, analyser.New(store), runner, b, recovery.NewPolicy(), time.Second, 3)

	agg, err := o.Execute(context.Background(), "do a thing", ModeSingle, "claude", nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(agg.Outcomes) != 1 {
		t.Fatalf("len(Outcomes) = %d, want 1", len(agg.Outcomes))
	}
	if agg.Outcomes[0].Success {
		t.Error("expected failure, single mode does not retry")
	}
	if len(runner.calls) != 1 {
		t.Errorf("runner invoked %d times, want 1 (single mode has no recovery)", len(runner.calls))
	}

	boardState, err := b.Read()
	if err != nil {
		t.Fatalf("board.Read() error: %v", err)
	}
	completed := boardState.TasksByStatus(board.TaskCompleted)
	if len(completed) != 1 {
		t.Errorf("expected 1 completed task recorded, got %d", len(completed))
	}
}

func TestExecuteAutoFallbackUsesSiblingCli(t *testing.T) {
	reg := newTestRegistry()
	runner := &scriptedRunner{outcomes: map[string][]supervisor.ExecutionOutcome{
		"claude": {{Success: false, NeedsRecovery: true}},
		"gemini": {{Success: true}},
	}}
	reg.Apply(map[string]registry.Override{"claude": {Fallback: "gemini"}})

	b := newTestBoard(t)
	store := analyser.NewStore(filepath.Join(t.TempDir(), "patterns.json"))
	policy := recovery.Policy{MaxRetries: 0, EnableResume: false, EnableFallback: true}
	o := New(reg, analyser.New(store), runner, b, policy, time.Second, 3)

	agg, err := o.Execute(context.Background(), "do a thing", ModeAutoFallback, "claude", nil, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !agg.Outcomes[0].Success {
		t.Error("expected success via fallback to gemini")
	}
	if agg.Outcomes[0].Cli != "gemini" {
		t.Errorf("Cli = %q, want gemini", agg.Outcomes[0].Cli)
	}
}

func TestExecuteParallelRunsAllAndAggregates(t *testing.T) {
	reg := newTestRegistry()
	runner := &scriptedRunner{outcomes: map[string][]supervisor.ExecutionOutcome{
		"claude": {{Success: true}},
		"qwen":   {{Success: true}},
		"iflow":  {{Success: false, NeedsRecovery: true}},
	}}
	b := newTestBoard(t)
	store := analyser.NewStore(filepath.Join(t.TempDir(), "patterns.json"))
	policy := recovery.Policy{MaxRetries: 0, EnableResume: false, EnableFallback: false}
	o := New(reg, analyser.New(store), runner, b, policy, time.Second, 3)

	agg, err := o.Execute(context.Background(), "refactor X", ModeParallel, "", []string{"claude", "qwen", "iflow"}, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(agg.Outcomes) != 3 {
		t.Fatalf("len(Outcomes) = %d, want 3", len(agg.Outcomes))
	}
	if agg.AllFailed() {
		t.Error("expected at least one success, AllFailed() should be false")
	}

	boardState, err := b.Read()
	if err != nil {
		t.Fatalf("board.Read() error: %v", err)
	}
	if len(boardState.History) != 6 {
		t.Errorf("expected 6 history entries (start+complete per cli), got %d", len(boardState.History))
	}
}

func TestExecuteParallelRequiresAtLeastOneCli(t *testing.T) {
	reg := newTestRegistry()
	runner := &scriptedRunner{outcomes: map[string][]supervisor.ExecutionOutcome{}}
	b := newTestBoard(t)
	store := analyser.NewStore(filepath.Join(t.TempDir(), "patterns.json"))
	o := New(reg, analyser.New(store), runner, b, recovery.NewPolicy(), time.Second, 3)

	_, err := o.Execute(context.Background(), "task", ModeParallel, "", nil, Options{})
	if err == nil {
		t.Fatal("expected an error for an empty cliList")
	}
}

func TestExecuteUnknownCliIsMisconfiguration(t *testing.T) {
	reg := registry.New()
	runner := &scriptedRunner{outcomes: map[string][]supervisor.ExecutionOutcome{}}
	b := newTestBoard(t)
	store := analyser.NewStore(filepath.Join(t.TempDir(), "patterns.json"))
	o := New(reg, analyser.New(store), runner, b, recovery.NewPolicy(), time.Second, 3)

	_, err := o.Execute(context.Background(), "task", ModeSingle, "nonexistent-cli", nil, Options{})
	if err == nil {
		t.Fatal("expected an error for an unknown cli")
	}
}
