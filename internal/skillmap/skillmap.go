// Package skillmap holds the static table of natural-language skill
// phrases the synthesiser recognizes in a user's task text, and rewrites
// them to a CLI-specific skill identifier, exactly matching by name the
// way the teacher's skills.Selector.SelectByNames silently skips phrases
// it doesn't recognize rather than erroring.
package skillmap

import "strings"

// Entry maps one natural-language phrase to its canonical skill
// identifier.
type Entry struct {
	Phrase     string
	Identifier string
}

// table is the static phrase→identifier map. Phrases are matched
// case-insensitively as substrings of the task text.
var table = []Entry{
	{Phrase: "alienation analysis", Identifier: "alienation-analysis"},
	{Phrase: "code review", Identifier: "code-review"},
	{Phrase: "security audit", Identifier: "security-audit"},
	{Phrase: "refactor", Identifier: "refactor"},
	{Phrase: "write tests", Identifier: "test-authoring"},
	{Phrase: "performance tuning", Identifier: "performance-tuning"},
	{Phrase: "dependency upgrade", Identifier: "dependency-upgrade"},
	{Phrase: "documentation pass", Identifier: "documentation"},
}

// Match finds the first known phrase present in prompt, case-insensitive,
// and returns its identifier. The second return value is false if no
// known phrase matched; prompt is returned unmodified by the caller in
// that case.
func Match(prompt string) (Entry, bool) {
	lower := strings.ToLower(prompt)
	for _, e := range table {
		if strings.Contains(lower, e.Phrase) {
			return e, true
		}
	}
	return Entry{}, false
}

// Rewrite replaces the first occurrence of entry.Phrase in prompt
// (case-insensitive) with identifier, optionally prefixed with "skill:".
func Rewrite(prompt string, entry Entry, requirePrefix bool) string {
	replacement := entry.Identifier
	if requirePrefix {
		replacement = "skill:" + replacement
	}
	lower := strings.ToLower(prompt)
	idx := strings.Index(lower, entry.Phrase)
	if idx == -1 {
		return prompt
	}
	return prompt[:idx] + replacement + prompt[idx+len(entry.Phrase):]
}
