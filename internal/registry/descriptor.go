// Package registry holds the static, read-mostly table of known AI CLIs:
// how to invoke each one non-interactively, which flags suppress
// confirmation prompts, and which sibling CLI to fall back to.
//
// Descriptors are configuration data, never behavior: the rest of the
// orchestrator (analyser, synthesiser, supervisor) consumes a descriptor's
// fields without branching on its Name. Branching on CLI identity belongs
// here and nowhere else.
package registry

// InvocationTemplate describes the shape of argv a CLI expects for a
// one-shot, non-interactive prompt.
type InvocationTemplate string

const (
	// TemplatePositional passes the prompt as a bare positional argument.
	TemplatePositional InvocationTemplate = "positional"
	// TemplateFlag passes the prompt via a named flag (e.g. "-p").
	TemplateFlag InvocationTemplate = "flag"
	// TemplateFlagAutoApprove is TemplateFlag plus an auto-approval flag.
	TemplateFlagAutoApprove InvocationTemplate = "flag-auto-approve"
	// TemplateSkipPermissions passes the prompt via a flag and appends a
	// skip-permissions + allowed-tools flag set (Claude's shape).
	TemplateSkipPermissions InvocationTemplate = "skip-permissions"
)

// AgentSkillCaps describes whether a CLI understands natural-language
// skill/agent references embedded in a prompt.
type AgentSkillCaps struct {
	// SupportsSkills is true if the CLI has any notion of named skills or
	// agents it can be pointed at via the prompt text.
	SupportsSkills bool
	// RequiresSkillPrefix is true if a skill reference must be prefixed
	// with "skill:" to be recognized (as opposed to being matched by
	// keyword alone).
	RequiresSkillPrefix bool
	// Keywords are phrases in the registry's skill-phrase map that this
	// CLI's prompts commonly contain; used by the synthesiser to decide
	// whether rewriting is worth attempting at all.
	Keywords []string
}

// CliDescriptor is the immutable, one-per-CLI configuration record
// described in the data model: binary, how to probe it, how to invoke it
// non-interactively, and its fallback partner.
type CliDescriptor struct {
	// Name is the short identifier used everywhere else ("claude", "qwen", …).
	Name string
	// Binary is the executable looked up on PATH.
	Binary string
	// VersionProbe is argv that prints a single-line version string.
	VersionProbe []string
	// HelpProbes is an ordered list of argv variants tried to obtain help
	// text; the first to produce non-empty output wins.
	HelpProbes [][]string
	// InvocationTemplate selects how a prompt is passed.
	InvocationTemplate InvocationTemplate
	// PromptFlag is the flag name used by TemplateFlag and its variants
	// (e.g. "-p", "--print"). Ignored by TemplatePositional.
	PromptFlag string
	// AutoApproveFlags is argv appended to disable interactive confirmation.
	AutoApproveFlags []string
	// AllowedTools is the tool allow-list appended for
	// TemplateSkipPermissions, e.g. {"Bash", "Edit", "Read", "Write"}.
	AllowedTools []string
	// Fallback is the name of the sibling CLI to try on persistent
	// failure, or "" if none is configured.
	Fallback string
	// ResumeCommand is argv invoked to restore session context before a
	// retry. May be empty if the CLI has no resume concept.
	ResumeCommand []string
	// AuthToken is an operator-configured bearer credential for CLIs whose
	// auth flow hands back a JWT (e.g. Copilot's device-flow token), as
	// opposed to an opaque vendor API key. Empty unless set via an
	// Override; none of the built-in descriptors carry one. Distinct from
	// AutoApproveFlags, which only ever holds plain confirmation-skipping
	// flags like "-y" or "--yolo", never a credential.
	AuthToken string
	// AgentSkillCaps describes the CLI's natural-language skill support.
	AgentSkillCaps AgentSkillCaps
}

// WithFallback returns a copy of d with Fallback set to name. Descriptors
// are treated as immutable value data; callers that need an override build
// a new value rather than mutating a shared one.
func (d CliDescriptor) WithFallback(name string) CliDescriptor {
	d.Fallback = name
	return d
}
