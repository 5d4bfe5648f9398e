package analyser

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/andywolf/stigmergy/internal/errs"
	"github.com/andywolf/stigmergy/internal/registry"
)

// Options configures a single Analyse call.
type Options struct {
	// Enhanced asks for the agent/skill capability block to be attached to
	// the returned pattern. The cached pattern itself is never mutated.
	Enhanced bool
	// ForceRefresh skips the cache and re-probes the CLI unconditionally.
	ForceRefresh bool
}

const (
	versionProbeTimeout = 3 * time.Second
	helpProbeTimeout    = 5 * time.Second
	perCLIBudget        = 60 * time.Second
	overallBudget       = 120 * time.Second
)

// Analyser probes registered CLIs and caches the derived CliPattern.
type Analyser struct {
	store *Store
}

// New creates an Analyser backed by store. Callers own the Store's
// lifetime (Load before first use, the Analyser itself calls Put/Save as
// it learns new patterns).
func New(store *Store) *Analyser {
	return &Analyser{store: store}
}

// Analyse returns the CliPattern for the descriptor, probing the CLI if no
// fresh cached entry exists.
func (a *Analyser) Analyse(ctx context.Context, d registry.CliDescriptor, opts Options) (CliPattern, error) {
	currentVersion := a.probeVersion(ctx, d)

	if !opts.ForceRefresh {
		if cached, ok := a.store.Get(d.Name); ok && IsFresh(cached, currentVersion) {
			return a.withEnhanced(cached, d, opts), nil
		}
	}

	pattern, err := a.probeAndExtract(ctx, d, currentVersion)
	if err != nil {
		_ = a.store.RecordFailure(d.Name, FailedAttempt{
			Error:     err.Error(),
			Timestamp: time.Now(),
			Attempts:  len(d.HelpProbes),
		})
		degraded := CliPattern{
			Name:      d.Name,
			Version:   currentVersion,
			Family:    DetectFamily(d.Name, ""),
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
		return degraded, nil
	}

	_ = a.store.Put(d.Name, pattern)
	return a.withEnhanced(pattern, d, opts), nil
}

// withEnhanced attaches the enhanced agent/skill capability view to a copy
// of pattern, never mutating the cached value.
func (a *Analyser) withEnhanced(pattern CliPattern, d registry.CliDescriptor, opts Options) CliPattern {
	result := pattern.clone()
	if opts.Enhanced {
		result.AgentSkillCaps = &AgentSkillInfo{
			SupportsSkills:      d.AgentSkillCaps.SupportsSkills,
			RequiresSkillPrefix: d.AgentSkillCaps.RequiresSkillPrefix,
			Keywords:            append([]string(nil), d.AgentSkillCaps.Keywords...),
		}
	}
	return result
}

// AnalyseAll runs Analyse for every named descriptor concurrently, one
// goroutine per CLI, with a per-CLI budget and an overall ceiling. A CLI
// whose analysis exceeds its budget is reported as a degraded pattern
// rather than blocking its siblings.
func (a *Analyser) AnalyseAll(ctx context.Context, descriptors []registry.CliDescriptor, opts Options) map[string]CliPattern {
	overallCtx, cancel := context.WithTimeout(ctx, overallBudget)
	defer cancel()

	results := make(map[string]CliPattern, len(descriptors))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, d := range descriptors {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			cliCtx, cancel := context.WithTimeout(overallCtx, perCLIBudget)
			defer cancel()

			pattern, err := a.Analyse(cliCtx, d, opts)
			if err != nil {
				pattern = CliPattern{
					Name:      d.Name,
					Family:    DetectFamily(d.Name, ""),
					Success:   false,
					Error:     err.Error(),
					Timestamp: time.Now(),
				}
			}

			mu.Lock()
			results[d.Name] = pattern
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// probeVersion runs the descriptor's version probe and returns its trimmed
// first line, or "" if the probe fails.
func (a *Analyser) probeVersion(ctx context.Context, d registry.CliDescriptor) string {
	if len(d.VersionProbe) == 0 {
		return ""
	}
	out, err := runProbe(ctx, d.Binary, d.VersionProbe, versionProbeTimeout)
	if err != nil {
		return ""
	}
	line := strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]
	return line
}

// probeAndExtract tries each help probe in order until one produces
// non-empty output, then extracts the full pattern from it.
func (a *Analyser) probeAndExtract(ctx context.Context, d registry.CliDescriptor, version string) (CliPattern, error) {
	var lastErr error
	for _, probe := range d.HelpProbes {
		out, err := runProbe(ctx, d.Binary, probe, helpProbeTimeout)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(out) == "" {
			continue
		}
		return extractPattern(d, version, out), nil
	}
	if lastErr == nil {
		lastErr = errs.ErrAnalysisDegraded
	}
	return CliPattern{}, lastErr
}

func extractPattern(d registry.CliDescriptor, version, helpText string) CliPattern {
	family := DetectFamily(d.Name, helpText)
	options := ExtractOptions(helpText)
	promptFlag := IdentifyPromptFlag(helpText, options)
	nonInteractiveFlag := IdentifyNonInteractiveFlag(helpText, options)

	return CliPattern{
		Name:               d.Name,
		Version:            version,
		Family:             family,
		Options:            options,
		Subcommands:        ExtractSubcommands(helpText),
		PromptFlag:         promptFlag,
		NonInteractiveFlag: nonInteractiveFlag,
		Examples:           ExtractExamples(helpText),
		InteractionMode:    ClassifyInteractionMode(helpText, nonInteractiveFlag),
		Timestamp:          time.Now(),
		Success:            true,
	}
}

// commandContext builds the *exec.Cmd used for a probe. Tests substitute
// this with a fake-binary runner (the teacher's TestHelperProcess
// pattern), so Analyse/AnalyseAll can be exercised without real CLIs
// installed.
var commandContext = exec.CommandContext

// runProbe spawns binary with argv under a timeout and returns its combined
// stdout+stderr. A tool-not-installed error (binary missing, exec error) is
// reported through the normal error return; callers swallow it per the
// spec's "tool-not-installed errors are swallowed" rule.
func runProbe(ctx context.Context, binary string, argv []string, timeout time.Duration) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := commandContext(probeCtx, binary, argv...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		if buf.Len() > 0 {
			return buf.String(), nil
		}
		return "", errs.ErrNotInstalled
	}
	return buf.String(), nil
}
