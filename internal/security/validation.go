// Package security provides utilities for securing sensitive information in logs and output.
package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// identifierPattern matches a bare CLI name or binary name: alphanumeric
// plus dash/underscore, no path separators.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// taskIDPattern matches the lowercase UUID form the board and registry
// generate for task and invocation identifiers.
var taskIDPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateBinaryName rejects an Override.Binary value that is a path rather
// than a bare executable name. Overrides come from a user-editable YAML
// file; without this check a malicious or typo'd override could point the
// registry at an arbitrary absolute path instead of a binary on PATH.
func ValidateBinaryName(name string) error {
	if name == "" {
		return fmt.Errorf("binary name is empty")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("binary name must not contain a path separator: %q", name)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("binary name contains invalid characters: %q", name)
	}
	return nil
}

// ValidateTaskID checks that id has the lowercase UUID shape the board
// assigns to tasks, catching a corrupted or hand-edited Status Board file
// before it is trusted as a lookup key.
func ValidateTaskID(id string) error {
	if !taskIDPattern.MatchString(id) {
		return fmt.Errorf("invalid task id format: %q", id)
	}
	return nil
}

// SanitizeForLog strips control characters (newlines, carriage returns,
// tabs) from a string about to be embedded in a single-line log entry or a
// Markdown table cell, so untrusted CLI output or task descriptions can't
// forge extra log lines or break the Status Board's table layout.
func SanitizeForLog(s string) string {
	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "|", "/")
	return replacer.Replace(s)
}
