// Package synthesiser turns a CLI descriptor, its analysed pattern, and a
// user prompt into the argv that invokes the CLI non-interactively.
// Synthesise is pure: it never consults wall-clock time or randomness, so
// the same inputs always produce the same argv.
package synthesiser

import (
	"github.com/andywolf/stigmergy/internal/registry"
	"github.com/andywolf/stigmergy/internal/skillmap"
)

// Context carries request-scoped synthesis options.
type Context struct {
	// IncludeContext, if true, causes ContextHeader to be prepended to the
	// prompt before argv is composed.
	IncludeContext bool
	// ContextHeader is the Status Board's context summary, already
	// rendered as prose. Ignored if IncludeContext is false.
	ContextHeader string
}

// Synthesise produces the argv to invoke d non-interactively for prompt,
// given the CLI's analysed pattern and the synthesis context.
func Synthesise(d registry.CliDescriptor, prompt string, ctx Context) []string {
	finalPrompt := prompt
	if ctx.IncludeContext && ctx.ContextHeader != "" {
		finalPrompt = ctx.ContextHeader + "\n\n" + prompt
	}

	if d.AgentSkillCaps.SupportsSkills {
		if entry, ok := skillmap.Match(finalPrompt); ok {
			finalPrompt = skillmap.Rewrite(finalPrompt, entry, d.AgentSkillCaps.RequiresSkillPrefix)
		}
	}

	switch d.InvocationTemplate {
	case registry.TemplatePositional:
		return append([]string{finalPrompt}, d.AutoApproveFlags...)

	case registry.TemplateFlag, registry.TemplateFlagAutoApprove:
		argv := []string{d.PromptFlag, finalPrompt}
		return append(argv, d.AutoApproveFlags...)

	case registry.TemplateSkipPermissions:
		argv := []string{d.PromptFlag, finalPrompt, "--dangerously-skip-permissions"}
		if len(d.AllowedTools) > 0 {
			argv = append(argv, "--allowed-tools", joinTools(d.AllowedTools))
		}
		return argv

	default:
		// Unknown template: fall back to the safest shape, a positional
		// prompt plus whatever auto-approve flags the descriptor declares.
		return append([]string{finalPrompt}, d.AutoApproveFlags...)
	}
}

func joinTools(tools []string) string {
	joined := ""
	for i, t := range tools {
		if i > 0 {
			joined += ","
		}
		joined += t
	}
	return joined
}
