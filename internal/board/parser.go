package board

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const footer = "<!-- machine-maintained: do not edit below this line -->"

const timeFormat = time.RFC3339

var (
	taskLinePattern = regexp.MustCompile(
		`^- \[(?P<id>[^\]]+)\] (?P<cli>[^:]+): (?P<desc>.*?) \(created: (?P<created>[^,)]+)(?:, completed: (?P<completed>[^,)]+))?(?:, success: (?P<success>true|false))?\)$`)
	findingLinePattern = regexp.MustCompile(
		`^- \[(?P<ts>[^\]]+)\] (?P<cli>[^(]+) \((?P<category>[^)]+)\): (?P<content>.*)$`)
	decisionLinePattern = regexp.MustCompile(
		`^- \[(?P<ts>[^\]]+)\] (?P<cli>[^:]+): (?P<decision>.*?) — (?P<rationale>.*)$`)
	historyLinePattern = regexp.MustCompile(
		`^- \[(?P<ts>[^\]]+)\] (?P<cli>[^(]+) \((?P<action>[^)]+)\): (?P<detail>.*)$`)
)

// Serialise renders b as the canonical Markdown document.
func Serialise(b Board) string {
	var sb strings.Builder

	sb.WriteString("# Status Board\n\n")

	sb.WriteString("## Project Info\n")
	fmt.Fprintf(&sb, "- Name: %s\n", b.Project.Name)
	fmt.Fprintf(&sb, "- Description: %s\n", b.Project.Description)
	fmt.Fprintf(&sb, "- Created: %s\n\n", formatTime(b.Project.CreatedAt))

	sb.WriteString("## Current State\n")
	fmt.Fprintf(&sb, "- Current CLI: %s\n", b.CurrentCli)
	fmt.Fprintf(&sb, "- Last Activity: %s\n\n", formatTime(b.LastActivity))

	sb.WriteString("## Task Queue\n\n")
	writeTaskSection(&sb, "Pending", b.TasksByStatus(TaskPending))
	writeTaskSection(&sb, "Ongoing", b.TasksByStatus(TaskOngoing))
	writeTaskSection(&sb, "Completed", b.TasksByStatus(TaskCompleted))

	sb.WriteString("## Key Findings\n")
	for _, f := range b.Findings {
		fmt.Fprintf(&sb, "- [%s] %s (%s): %s\n", formatTime(f.Timestamp), f.Cli, f.Category, f.Content)
	}
	sb.WriteString("\n")

	sb.WriteString("## Decisions\n")
	for _, d := range b.Decisions {
		fmt.Fprintf(&sb, "- [%s] %s: %s — %s\n", formatTime(d.Timestamp), d.Cli, d.Decision, d.Rationale)
	}
	sb.WriteString("\n")

	sb.WriteString("## Collaboration History\n")
	for _, h := range b.History {
		fmt.Fprintf(&sb, "- [%s] %s (%s): %s\n", formatTime(h.Timestamp), h.Cli, h.Action, h.Detail)
	}
	sb.WriteString("\n")

	sb.WriteString(footer + "\n")

	return sb.String()
}

func writeTaskSection(sb *strings.Builder, title string, tasks []Task) {
	fmt.Fprintf(sb, "### %s\n", title)
	for _, t := range tasks {
		line := fmt.Sprintf("- [%s] %s: %s (created: %s", t.ID, t.Cli, t.Description, formatTime(t.CreatedAt))
		if t.HasOutcome {
			line += fmt.Sprintf(", completed: %s, success: %t", formatTime(t.CompletedAt), t.Success)
		}
		line += ")"
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Parse reconstructs a Board from its serialised Markdown form.
func Parse(doc string) (Board, error) {
	var b Board
	lines := strings.Split(doc, "\n")

	var section, subsection string
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || trimmed == footer:
			continue
		case strings.HasPrefix(trimmed, "### "):
			subsection = strings.TrimPrefix(trimmed, "### ")
			continue
		case strings.HasPrefix(trimmed, "## "):
			section = strings.TrimPrefix(trimmed, "## ")
			subsection = ""
			continue
		case strings.HasPrefix(trimmed, "# "):
			continue
		}

		switch section {
		case "Project Info":
			parseKV(trimmed, "Name:", &b.Project.Name)
			parseKV(trimmed, "Description:", &b.Project.Description)
			parseKVTime(trimmed, "Created:", &b.Project.CreatedAt)
		case "Current State":
			parseKV(trimmed, "Current CLI:", &b.CurrentCli)
			parseKVTime(trimmed, "Last Activity:", &b.LastActivity)
		case "Task Queue":
			if t, ok := parseTaskLine(trimmed); ok {
				t.Status = TaskStatus(strings.ToLower(subsection))
				b.Tasks = append(b.Tasks, t)
			}
		case "Key Findings":
			if f, ok := parseFindingLine(trimmed); ok {
				b.Findings = append(b.Findings, f)
			}
		case "Decisions":
			if d, ok := parseDecisionLine(trimmed); ok {
				b.Decisions = append(b.Decisions, d)
			}
		case "Collaboration History":
			if h, ok := parseHistoryLine(trimmed); ok {
				b.History = append(b.History, h)
			}
		}
	}

	return b, nil
}

func parseKV(line, prefix string, dst *string) {
	if strings.HasPrefix(line, "- "+prefix) {
		*dst = strings.TrimSpace(strings.TrimPrefix(line, "- "+prefix))
	}
}

func parseKVTime(line, prefix string, dst *time.Time) {
	if strings.HasPrefix(line, "- "+prefix) {
		*dst = parseTime(strings.TrimSpace(strings.TrimPrefix(line, "- "+prefix)))
	}
}

func parseTaskLine(line string) (Task, bool) {
	m := taskLinePattern.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}
	names := taskLinePattern.SubexpNames()
	vals := make(map[string]string, len(names))
	for i, n := range names {
		if n != "" {
			vals[n] = m[i]
		}
	}
	t := Task{
		ID:          vals["id"],
		Cli:         vals["cli"],
		Description: vals["desc"],
		CreatedAt:   parseTime(vals["created"]),
	}
	if vals["completed"] != "" {
		t.CompletedAt = parseTime(vals["completed"])
		t.HasOutcome = true
		t.Success = vals["success"] == "true"
	}
	return t, true
}

func parseFindingLine(line string) (Finding, bool) {
	m := findingLinePattern.FindStringSubmatch(line)
	if m == nil {
		return Finding{}, false
	}
	names := findingLinePattern.SubexpNames()
	vals := make(map[string]string, len(names))
	for i, n := range names {
		if n != "" {
			vals[n] = m[i]
		}
	}
	return Finding{
		Timestamp: parseTime(vals["ts"]),
		Cli:       strings.TrimSpace(vals["cli"]),
		Category:  vals["category"],
		Content:   vals["content"],
	}, true
}

func parseDecisionLine(line string) (Decision, bool) {
	m := decisionLinePattern.FindStringSubmatch(line)
	if m == nil {
		return Decision{}, false
	}
	names := decisionLinePattern.SubexpNames()
	vals := make(map[string]string, len(names))
	for i, n := range names {
		if n != "" {
			vals[n] = m[i]
		}
	}
	return Decision{
		Timestamp: parseTime(vals["ts"]),
		Cli:       vals["cli"],
		Decision:  vals["decision"],
		Rationale: vals["rationale"],
	}, true
}

func parseHistoryLine(line string) (HistoryEntry, bool) {
	m := historyLinePattern.FindStringSubmatch(line)
	if m == nil {
		return HistoryEntry{}, false
	}
	names := historyLinePattern.SubexpNames()
	vals := make(map[string]string, len(names))
	for i, n := range names {
		if n != "" {
			vals[n] = m[i]
		}
	}
	return HistoryEntry{
		Timestamp: parseTime(vals["ts"]),
		Cli:       strings.TrimSpace(vals["cli"]),
		Action:    vals["action"],
		Detail:    vals["detail"],
	}, true
}
