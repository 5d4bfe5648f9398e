package board

import (
	"testing"
	"time"
)

func sampleBoard() Board {
	created := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	return Board{
		Project:      ProjectInfo{Name: "demo", Description: "a demo project", CreatedAt: created},
		CurrentCli:   "qwen",
		LastActivity: created.Add(time.Hour),
		Tasks: []Task{
			{ID: "t1", Cli: "qwen", Description: "task A", Status: TaskCompleted,
				CreatedAt: created, CompletedAt: created.Add(time.Minute), Success: true, HasOutcome: true},
			{ID: "t2", Cli: "claude", Description: "task B", Status: TaskOngoing, CreatedAt: created},
		},
		Findings: []Finding{
			{Cli: "qwen", Category: "perf", Content: "N+1 query in module Z", Timestamp: created},
		},
		Decisions: []Decision{
			{Cli: "qwen", Decision: "use streaming parser", Rationale: "avoid loading whole file", Timestamp: created},
		},
		History: []HistoryEntry{
			{Cli: "qwen", Action: "task-start", Detail: "task A", Timestamp: created},
			{Cli: "qwen", Action: "task-complete", Detail: "task A", Timestamp: created.Add(time.Minute)},
		},
	}
}

func TestSerialiseParseRoundTrip(t *testing.T) {
	b := sampleBoard()
	doc := Serialise(b)

	parsed, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if parsed.Project.Name != b.Project.Name {
		t.Errorf("Project.Name = %q, want %q", parsed.Project.Name, b.Project.Name)
	}
	if parsed.CurrentCli != b.CurrentCli {
		t.Errorf("CurrentCli = %q, want %q", parsed.CurrentCli, b.CurrentCli)
	}
	if !parsed.LastActivity.Equal(b.LastActivity) {
		t.Errorf("LastActivity = %v, want %v", parsed.LastActivity, b.LastActivity)
	}
	if len(parsed.Tasks) != len(b.Tasks) {
		t.Fatalf("len(Tasks) = %d, want %d", len(parsed.Tasks), len(b.Tasks))
	}
	for i := range b.Tasks {
		if parsed.Tasks[i].ID != b.Tasks[i].ID {
			t.Errorf("Tasks[%d].ID = %q, want %q", i, parsed.Tasks[i].ID, b.Tasks[i].ID)
		}
		if parsed.Tasks[i].Status != b.Tasks[i].Status {
			t.Errorf("Tasks[%d].Status = %q, want %q", i, parsed.Tasks[i].Status, b.Tasks[i].Status)
		}
		if parsed.Tasks[i].HasOutcome != b.Tasks[i].HasOutcome {
			t.Errorf("Tasks[%d].HasOutcome = %v, want %v", i, parsed.Tasks[i].HasOutcome, b.Tasks[i].HasOutcome)
		}
	}
	if len(parsed.Findings) != 1 || parsed.Findings[0].Content != "N+1 query in module Z" {
		t.Errorf("Findings = %+v", parsed.Findings)
	}
	if len(parsed.Decisions) != 1 || parsed.Decisions[0].Rationale != "avoid loading whole file" {
		t.Errorf("Decisions = %+v", parsed.Decisions)
	}
	if len(parsed.History) != 2 {
		t.Errorf("len(History) = %d, want 2", len(parsed.History))
	}
}

func TestParseEmptyBoard(t *testing.T) {
	b := Board{Project: ProjectInfo{Name: "empty"}}
	doc := Serialise(b)

	parsed, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if parsed.Project.Name != "empty" {
		t.Errorf("Project.Name = %q, want empty", parsed.Project.Name)
	}
	if len(parsed.Tasks) != 0 || len(parsed.Findings) != 0 || len(parsed.Decisions) != 0 || len(parsed.History) != 0 {
		t.Errorf("expected all sections empty, got %+v", parsed)
	}
}

func TestSerialiseContainsMachineMaintainedFooter(t *testing.T) {
	doc := Serialise(sampleBoard())
	if !contains(doc, footer) {
		t.Error("expected serialised document to contain the machine-maintained footer")
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
