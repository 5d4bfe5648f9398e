package analyser

import (
	"regexp"
	"strings"
)

// familyHints maps a case-insensitive substring of a CLI's own name to the
// family it almost certainly belongs to, checked before any help-text
// scanning happens.
var familyHints = map[string]Family{
	"claude": FamilyAnthropic,
	"gemini": FamilyGoogle,
	"qwen":   FamilyAlibaba,
	"iflow":  FamilyAlibaba,
	"codex":  FamilyOpenAI,
	"copilot": FamilyGitHub,
}

// familyTextHints is the fallback: substrings looked for in the help text
// itself when the CLI name gives no hint.
var familyTextHints = []struct {
	pattern *regexp.Regexp
	family  Family
}{
	{regexp.MustCompile(`(?i)anthropic`), FamilyAnthropic},
	{regexp.MustCompile(`(?i)google\s+(ai|gemini)`), FamilyGoogle},
	{regexp.MustCompile(`(?i)openai`), FamilyOpenAI},
	{regexp.MustCompile(`(?i)alibaba|qwen|tongyi`), FamilyAlibaba},
	{regexp.MustCompile(`(?i)github`), FamilyGitHub},
}

// DetectFamily classifies a CLI by name first, then by scanning its help
// text, falling back to generic.
func DetectFamily(name, helpText string) Family {
	lowerName := strings.ToLower(name)
	for hint, family := range familyHints {
		if strings.Contains(lowerName, hint) {
			return family
		}
	}
	for _, hint := range familyTextHints {
		if hint.pattern.MatchString(helpText) {
			return hint.family
		}
	}
	return FamilyGeneric
}

// optionPattern matches a single CLI flag in --help output, e.g.
// "  -p, --prompt <text>   Run with the given prompt".
var optionPattern = regexp.MustCompile(`(?m)^\s*(-{1,2}[a-zA-Z][a-zA-Z0-9-]*)(?:,\s*(-{1,2}[a-zA-Z][a-zA-Z0-9-]*))?`)

// subcommandPattern matches a "name   description" style line, the common
// shape for a help text's subcommand listing section.
var subcommandPattern = regexp.MustCompile(`(?m)^\s{2,4}([a-z][a-z0-9_-]*)\s{2,}(\S.*)$`)

// examplePattern matches lines that look like a worked command-line
// example: they start with the CLI's own name or a shell prompt marker.
var examplePattern = regexp.MustCompile(`(?m)^\s*(?:\$\s*)?([a-zA-Z0-9_-]+\s+[^\n]{3,120})$`)

// promptFlagPattern and nonInteractiveFlagPattern classify an already
// extracted option string by the vocabulary used in its description line.
var promptFlagPattern = regexp.MustCompile(`(?i)prompt|input|query|question`)
var nonInteractiveFlagPattern = regexp.MustCompile(`(?i)non-interactive|batch|no-input|stdin|print|pipe|exit`)

// ExtractOptions scans helpText line by line and returns every flag token
// found, deduplicated and in first-seen order. Lines that don't match are
// skipped rather than failing the whole probe, mirroring how a streaming
// line-oriented parser tolerates unrecognised lines.
func ExtractOptions(helpText string) []string {
	seen := make(map[string]bool)
	var options []string
	for _, line := range strings.Split(helpText, "\n") {
		m := optionPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, flag := range m[1:] {
			if flag == "" || seen[flag] {
				continue
			}
			seen[flag] = true
			options = append(options, flag)
		}
	}
	return options
}

// ExtractSubcommands scans helpText for a subcommand listing section.
func ExtractSubcommands(helpText string) []Subcommand {
	var subs []Subcommand
	for _, line := range strings.Split(helpText, "\n") {
		m := subcommandPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		subs = append(subs, Subcommand{Name: m[1], Description: strings.TrimSpace(m[2])})
	}
	return subs
}

// ExtractExamples pulls out lines that look like worked command-line
// examples, capped to a reasonable number to keep the cached pattern small.
func ExtractExamples(helpText string) []string {
	var examples []string
	for _, line := range strings.Split(helpText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !examplePattern.MatchString(line) {
			continue
		}
		examples = append(examples, trimmed)
		if len(examples) >= 10 {
			break
		}
	}
	return examples
}

// IdentifyPromptFlag returns the first option whose context line mentions
// prompt-ish vocabulary, searched against the raw help text so the flag's
// description (not just the flag token) is consulted.
func IdentifyPromptFlag(helpText string, options []string) string {
	return identifyFlag(helpText, options, promptFlagPattern)
}

// IdentifyNonInteractiveFlag returns the first option whose context line
// mentions non-interactive vocabulary.
func IdentifyNonInteractiveFlag(helpText string, options []string) string {
	return identifyFlag(helpText, options, nonInteractiveFlagPattern)
}

func identifyFlag(helpText string, options []string, vocab *regexp.Regexp) string {
	lines := strings.Split(helpText, "\n")
	for _, opt := range options {
		for _, line := range lines {
			if strings.Contains(line, opt) && vocab.MatchString(line) {
				return opt
			}
		}
	}
	return ""
}

// ClassifyInteractionMode applies the spec's priority order: an explicit
// non-interactive flag wins, then stdin/pipe mentions, then batch/script
// mentions, else the CLI is assumed interactive.
func ClassifyInteractionMode(helpText, nonInteractiveFlag string) InteractionMode {
	if nonInteractiveFlag != "" {
		return ModeNonInteractive
	}
	lower := strings.ToLower(helpText)
	if strings.Contains(lower, "stdin") || strings.Contains(lower, "pipe") {
		return ModeStdinSupport
	}
	if strings.Contains(lower, "batch") || strings.Contains(lower, "script") {
		return ModeBatchMode
	}
	return ModeInteractive
}
