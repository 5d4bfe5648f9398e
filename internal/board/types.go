// Package board implements the Status Board: a file-backed Markdown
// document shared across CLI invocations, used for stigmergic
// coordination. Grounded on the teacher's internal/handoff.Store and
// internal/memory.Store (load-if-exists JSON persistence,
// os.MkdirAll-on-first-use) generalized to Markdown, plus an
// exclusive-lock-file write protocol the Status Board's multi-writer
// contract requires.
package board

import "time"

// TaskStatus is a task's position in the Task Queue.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskOngoing   TaskStatus = "ongoing"
	TaskCompleted TaskStatus = "completed"
)

// ProjectInfo is the board's header, written once at initialize time.
type ProjectInfo struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// Task is one entry in the Task Queue.
type Task struct {
	ID          string
	Cli         string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt time.Time // zero if not completed
	Success     bool
	HasOutcome  bool // true once a completion outcome has been recorded
}

// Finding is an appended entry in Key Findings. Findings are append-only:
// once recorded they are never edited or removed from persisted state.
type Finding struct {
	Cli       string
	Category  string
	Content   string
	Timestamp time.Time
}

// Decision is an appended entry in Decisions.
type Decision struct {
	Cli       string
	Decision  string
	Rationale string
	Timestamp time.Time
}

// HistoryEntry is one line of Collaboration History.
type HistoryEntry struct {
	Cli       string
	Action    string
	Detail    string
	Timestamp time.Time
}

// Board is the full, structured contents of the Status Board.
type Board struct {
	Project      ProjectInfo
	CurrentCli   string
	LastActivity time.Time
	Tasks        []Task
	Findings     []Finding
	Decisions    []Decision
	History      []HistoryEntry
}

// TasksByStatus returns the board's tasks partitioned into the three
// Task Queue subsections, preserving insertion order within each.
func (b *Board) TasksByStatus(status TaskStatus) []Task {
	var out []Task
	for _, t := range b.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
