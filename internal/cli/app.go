package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/andywolf/stigmergy/internal/analyser"
	"github.com/andywolf/stigmergy/internal/board"
	"github.com/andywolf/stigmergy/internal/cloud/gcp"
	"github.com/andywolf/stigmergy/internal/cloudlog"
	"github.com/andywolf/stigmergy/internal/config"
	"github.com/andywolf/stigmergy/internal/orchestrator"
	"github.com/andywolf/stigmergy/internal/recovery"
	"github.com/andywolf/stigmergy/internal/registry"
	"github.com/andywolf/stigmergy/internal/supervisor"
)

// app bundles the components a cobra command needs to execute a task: the
// orchestrator plus the Status Board it shares with every invocation.
type app struct {
	cfg          *config.Config
	registry     *registry.Registry
	supervisor   *supervisor.Supervisor
	orchestrator *orchestrator.Orchestrator
	board        *board.Store
	sink         *cloudlog.Sink
}

// newApp loads configuration and wires the registry, analyser, supervisor,
// Status Board and orchestrator together, in the same load-then-build
// order the teacher's run command follows.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.CloudLog.ProjectID != "" {
		if err := resolveRegistrySecrets(ctx, cfg); err != nil {
			return nil, fmt.Errorf("resolve registry secrets: %w", err)
		}
	}

	reg := registry.New()
	if err := reg.Apply(cfg.Registry); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cachePath, err := analyser.DefaultCachePath()
	if err != nil {
		return nil, fmt.Errorf("resolve pattern cache path: %w", err)
	}
	store := analyser.NewStore(cachePath)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load pattern cache: %w", err)
	}
	an := analyser.New(store)

	sup := supervisor.New(time.Duration(cfg.Execution.PromptDebounceMs) * time.Millisecond)

	boardStore := board.New(cfg.Board.Path, time.Duration(cfg.Board.LockTimeoutSec)*time.Second)
	if err := boardStore.Initialize(board.ProjectInfo{Name: projectName()}); err != nil {
		return nil, fmt.Errorf("initialize status board: %w", err)
	}

	local := log.New(os.Stderr, "stigmergy ", log.LstdFlags)
	sinkOpts := []cloudlog.Option{cloudlog.WithExecutionLog(cfg.ExecLog.Path)}
	if cfg.CloudLog.ProjectID != "" {
		sinkOpts = append(sinkOpts, cloudlog.WithCloudProject(ctx, cfg.CloudLog.ProjectID, cfg.CloudLog.LogID))
	}
	sink, err := cloudlog.New(local, sinkOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialize log sink: %w", err)
	}

	warnExpiredTokens(reg, sink)

	policy := recovery.Policy{
		MaxRetries:     cfg.Recovery.MaxRetries,
		EnableResume:   true,
		EnableFallback: cfg.Recovery.EnableFallback,
	}

	orch := orchestrator.New(reg, an, sup, boardStore, policy, cfg.ExecutionTimeout(), cfg.Execution.ParallelismLimit)

	return &app{cfg: cfg, registry: reg, supervisor: sup, orchestrator: orch, board: boardStore, sink: sink}, nil
}

// resolveRegistrySecrets fetches any "secret://" override values from GCP
// Secret Manager in place, so a claude/codex auto-approve token or binary
// override never needs to sit in the YAML config as plaintext.
func resolveRegistrySecrets(ctx context.Context, cfg *config.Config) error {
	client, err := gcp.NewSecretManagerClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return registry.ResolveSecretRefs(ctx, cfg.Registry, client)
}

// warnExpiredTokens decodes each descriptor's configured AuthToken (e.g. a
// Copilot CLI device-flow bearer token set via a registry override) and
// warns if it has already expired, so a stale credential surfaces before a
// child process fails on it midway through a run. Descriptors without an
// AuthToken (the builtin default for every CLI) are skipped outright;
// AutoApproveFlags is never inspected here since it only ever holds plain
// confirmation-skipping flags, never a credential.
func warnExpiredTokens(reg *registry.Registry, sink *cloudlog.Sink) {
	for _, d := range reg.List() {
		if d.AuthToken == "" {
			continue
		}
		status, err := registry.InspectBearerToken(d.AuthToken)
		if err != nil {
			continue
		}
		if status.Expired {
			sink.Warning("%s: configured bearer token expired at %s", d.Name, status.ExpiresAt)
		}
	}
}

func (a *app) close() {
	if a.sink != nil {
		_ = a.sink.Close()
	}
}

func projectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "stigmergy-project"
	}
	return filepath.Base(cwd)
}
