// Package analyser probes each registered CLI's help output, classifies its
// interaction family, and caches the derived pattern so repeat invocations
// skip the probe.
package analyser

import "time"

// Family tags the vendor conventions a CLI's help text resembles.
type Family string

const (
	FamilyAnthropic Family = "anthropic"
	FamilyGoogle    Family = "google"
	FamilyOpenAI    Family = "openai"
	FamilyAlibaba   Family = "alibaba"
	FamilyGitHub    Family = "github"
	FamilyGeneric   Family = "generic"
)

// InteractionMode classifies how a CLI expects to receive its prompt.
type InteractionMode string

const (
	ModeInteractive    InteractionMode = "interactive"
	ModeNonInteractive InteractionMode = "non-interactive"
	ModeStdinSupport   InteractionMode = "stdin-support"
	ModeBatchMode      InteractionMode = "batch-mode"
)

// Subcommand is one entry parsed out of a CLI's help text.
type Subcommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FailedAttempt records a probe that produced no usable output.
type FailedAttempt struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	Attempts  int       `json:"attempts"`
}

// CliPattern is the derived, cached knowledge about one CLI's help output
// and invocation style. It is immutable once returned by Analyse: callers
// asking for the enhanced view get a new value, never a mutated cached one.
type CliPattern struct {
	Name               string          `json:"name"`
	Version            string          `json:"version"`
	Family             Family          `json:"family"`
	Options            []string        `json:"options"`
	Subcommands        []Subcommand    `json:"subcommands"`
	PromptFlag         string          `json:"promptFlag,omitempty"`
	NonInteractiveFlag string          `json:"nonInteractiveFlag,omitempty"`
	Examples           []string        `json:"examples"`
	InteractionMode    InteractionMode `json:"interactionMode"`
	Timestamp          time.Time       `json:"timestamp"`
	Success            bool            `json:"success"`
	Error              string          `json:"error,omitempty"`

	// AgentSkillCaps is only populated when the caller asked for the
	// enhanced view; it is never part of the persisted cache entry.
	AgentSkillCaps *AgentSkillInfo `json:"-"`

	LastFailure *FailedAttempt `json:"lastFailure,omitempty"`
}

// AgentSkillInfo mirrors registry.AgentSkillCaps but lives here so the
// enhanced pattern view doesn't need an upward import from analyser to
// registry beyond what Analyse already takes as a parameter.
type AgentSkillInfo struct {
	SupportsSkills      bool
	RequiresSkillPrefix bool
	Keywords            []string
}

// clone returns a deep-enough copy so mutating the result never affects a
// cached pattern.
func (p CliPattern) clone() CliPattern {
	c := p
	c.Options = append([]string(nil), p.Options...)
	c.Subcommands = append([]Subcommand(nil), p.Subcommands...)
	c.Examples = append([]string(nil), p.Examples...)
	if p.LastFailure != nil {
		f := *p.LastFailure
		c.LastFailure = &f
	}
	c.AgentSkillCaps = nil
	return c
}
