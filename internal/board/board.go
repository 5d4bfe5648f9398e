package board

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andywolf/stigmergy/internal/security"
)

// ContextSummaryOptions controls how much of the board's persisted state
// contextSummary renders into prose.
type ContextSummaryOptions struct {
	MaxHistory       int // default 10
	IncludeFindings  bool
	IncludeDecisions bool
}

// TaskUpdate patches an existing task's status and, optionally, its
// completion outcome.
type TaskUpdate struct {
	ID          string
	Status      TaskStatus
	CompletedAt time.Time
	Success     bool
	HasOutcome  bool
}

// Patch enumerates the mutations update() can apply in one locked
// read-merge-write cycle. Only non-nil fields are applied.
type Patch struct {
	SetCurrentCli   *string
	SetLastActivity *time.Time
	AddTask         *Task
	UpdateTask      *TaskUpdate
	AddFinding      *Finding
	AddDecision     *Decision
	AddHistory      *HistoryEntry
}

// Store is the Status Board's file-backed handle: one per project, shared
// across every CLI invocation that participates in stigmergic
// coordination.
type Store struct {
	path        string
	lockTimeout time.Duration
}

// New returns a Store for the Status Board at path, using lockTimeout for
// the exclusive-write lock's retry budget.
func New(path string, lockTimeout time.Duration) *Store {
	return &Store{path: path, lockTimeout: lockTimeout}
}

// Initialize creates the board file with a seeded skeleton if it does not
// already exist. Idempotent: calling it on an existing board is a no-op.
func (s *Store) Initialize(project ProjectInfo) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat status board: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create status board directory: %w", err)
	}

	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}

	b := Board{Project: project, LastActivity: project.CreatedAt}
	return s.writeLocked(b)
}

// Read parses the current board contents. Read is lock-free: a concurrent
// writer may leave it observing a slightly stale but well-formed document.
func (s *Store) Read() (Board, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Board{}, fmt.Errorf("read status board: %w", err)
	}
	return Parse(string(data))
}

// Update performs an atomic read-merge-write of patch under the exclusive
// lock.
func (s *Store) Update(patch Patch) error {
	lockPath, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer releaseLock(lockPath)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read status board: %w", err)
	}
	b, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse status board: %w", err)
	}

	applyPatch(&b, patch)

	return s.write(b)
}

func applyPatch(b *Board, patch Patch) {
	if patch.SetCurrentCli != nil {
		b.CurrentCli = *patch.SetCurrentCli
	}
	if patch.SetLastActivity != nil {
		b.LastActivity = *patch.SetLastActivity
	}
	if patch.AddTask != nil {
		b.Tasks = append(b.Tasks, *patch.AddTask)
	}
	if patch.UpdateTask != nil {
		u := patch.UpdateTask
		for i := range b.Tasks {
			if b.Tasks[i].ID == u.ID {
				b.Tasks[i].Status = u.Status
				if u.HasOutcome {
					b.Tasks[i].CompletedAt = u.CompletedAt
					b.Tasks[i].Success = u.Success
					b.Tasks[i].HasOutcome = true
				}
				break
			}
		}
	}
	if patch.AddFinding != nil {
		b.Findings = append(b.Findings, *patch.AddFinding)
	}
	if patch.AddDecision != nil {
		b.Decisions = append(b.Decisions, *patch.AddDecision)
	}
	if patch.AddHistory != nil {
		b.History = append(b.History, *patch.AddHistory)
	}
}

// RecordTask is a convenience wrapper: it sets currentCli, appends a
// Collaboration History entry, and either enqueues a new task or marks an
// existing one complete with outcome, in a single lock acquisition.
func (s *Store) RecordTask(cli, taskID, description string, outcome *TaskOutcome) error {
	description = security.SanitizeForLog(description)

	lockPath, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer releaseLock(lockPath)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read status board: %w", err)
	}
	b, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse status board: %w", err)
	}

	now := time.Now()
	b.CurrentCli = cli
	b.LastActivity = now

	if outcome == nil {
		b.Tasks = append(b.Tasks, Task{
			ID:          taskID,
			Cli:         cli,
			Description: description,
			Status:      TaskOngoing,
			CreatedAt:   now,
		})
		b.History = append(b.History, HistoryEntry{
			Cli: cli, Action: "task-start", Detail: description, Timestamp: now,
		})
		return s.write(b)
	}

	found := false
	for i := range b.Tasks {
		if b.Tasks[i].ID == taskID {
			b.Tasks[i].Status = TaskCompleted
			b.Tasks[i].CompletedAt = now
			b.Tasks[i].Success = outcome.Success
			b.Tasks[i].HasOutcome = true
			found = true
			break
		}
	}
	if !found {
		b.Tasks = append(b.Tasks, Task{
			ID: taskID, Cli: cli, Description: description, Status: TaskCompleted,
			CreatedAt: now, CompletedAt: now, Success: outcome.Success, HasOutcome: true,
		})
	}

	action := "task-complete"
	if !outcome.Success {
		action = "task-failed"
	}
	b.History = append(b.History, HistoryEntry{
		Cli: cli, Action: action, Detail: description, Timestamp: now,
	})

	return s.write(b)
}

// TaskOutcome is the completion result RecordTask attaches to a task.
type TaskOutcome struct {
	Success bool
}

// RecordFinding appends a Key Findings entry. Content comes from CLI
// stdout and task text, so it is sanitized before it can reach a Markdown
// table cell or a single-line history entry.
func (s *Store) RecordFinding(cli, category, content string) error {
	content = security.SanitizeForLog(content)
	return s.Update(Patch{
		SetLastActivity: timePtr(time.Now()),
		AddFinding:      &Finding{Cli: cli, Category: category, Content: content, Timestamp: time.Now()},
		AddHistory:      &HistoryEntry{Cli: cli, Action: "finding", Detail: content, Timestamp: time.Now()},
	})
}

// RecordDecision appends a Decisions entry.
func (s *Store) RecordDecision(cli, decision, rationale string) error {
	decision = security.SanitizeForLog(decision)
	rationale = security.SanitizeForLog(rationale)
	return s.Update(Patch{
		SetLastActivity: timePtr(time.Now()),
		AddDecision:     &Decision{Cli: cli, Decision: decision, Rationale: rationale, Timestamp: time.Now()},
		AddHistory:      &HistoryEntry{Cli: cli, Action: "decision", Detail: decision, Timestamp: time.Now()},
	})
}

// SwitchCli updates currentCli and appends a history entry describing why.
func (s *Store) SwitchCli(cli, context string) error {
	context = security.SanitizeForLog(context)
	return s.Update(Patch{
		SetCurrentCli:   &cli,
		SetLastActivity: timePtr(time.Now()),
		AddHistory:      &HistoryEntry{Cli: cli, Action: "switch", Detail: context, Timestamp: time.Now()},
	})
}

// ContextSummary renders a prose summary of the board's current state
// suitable for prepending to a CLI prompt. Persisted state is never
// truncated by this operation; only the rendered summary is capped.
func (s *Store) ContextSummary(opts ContextSummaryOptions) (string, error) {
	b, err := s.Read()
	if err != nil {
		return "", err
	}

	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 10
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", b.Project.Name)
	fmt.Fprintf(&sb, "Current CLI: %s\n", b.CurrentCli)

	pending := b.TasksByStatus(TaskPending)
	ongoing := b.TasksByStatus(TaskOngoing)
	completed := b.TasksByStatus(TaskCompleted)
	fmt.Fprintf(&sb, "Tasks: %d pending, %d ongoing, %d completed\n", len(pending), len(ongoing), len(completed))
	for _, t := range lastTasks(ongoing, 5) {
		fmt.Fprintf(&sb, "  ongoing: [%s] %s (%s)\n", t.ID, t.Description, t.Cli)
	}

	if opts.IncludeFindings {
		findings := lastFindings(b.Findings, 20)
		if len(findings) > 0 {
			sb.WriteString("Key Findings:\n")
			for _, f := range findings {
				fmt.Fprintf(&sb, "  - (%s) %s: %s\n", f.Category, f.Cli, f.Content)
			}
		}
	}

	if opts.IncludeDecisions {
		decisions := lastDecisions(b.Decisions, 20)
		if len(decisions) > 0 {
			sb.WriteString("Decisions:\n")
			for _, d := range decisions {
				fmt.Fprintf(&sb, "  - %s: %s — %s\n", d.Cli, d.Decision, d.Rationale)
			}
		}
	}

	history := lastHistory(b.History, maxHistory)
	if len(history) > 0 {
		sb.WriteString("Recent History:\n")
		for _, h := range history {
			fmt.Fprintf(&sb, "  - [%s] %s (%s): %s\n", h.Timestamp.Format(timeFormat), h.Cli, h.Action, h.Detail)
		}
	}

	return sb.String(), nil
}

// Report produces a full human-readable status dump, unlike
// ContextSummary it is not meant for prompt injection and applies no
// truncation beyond sorting tasks by status.
func (s *Store) Report() (string, error) {
	b, err := s.Read()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Status Board: %s\n", b.Project.Name)
	fmt.Fprintf(&sb, "Current CLI: %s, last activity: %s\n", b.CurrentCli, b.LastActivity.Format(timeFormat))

	for _, status := range []TaskStatus{TaskPending, TaskOngoing, TaskCompleted} {
		tasks := b.TasksByStatus(status)
		fmt.Fprintf(&sb, "%s (%d):\n", strings.Title(string(status)), len(tasks))
		sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
		for _, t := range tasks {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", t.ID, t.Cli, t.Description)
		}
	}

	fmt.Fprintf(&sb, "Findings: %d, Decisions: %d, History entries: %d\n",
		len(b.Findings), len(b.Decisions), len(b.History))

	return sb.String(), nil
}

func (s *Store) write(b Board) error {
	data := []byte(Serialise(b))
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write status board: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) writeLocked(b Board) error {
	lockPath, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer releaseLock(lockPath)
	return s.write(b)
}

func timePtr(t time.Time) *time.Time { return &t }

func lastTasks(items []Task, n int) []Task {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func lastFindings(items []Finding, n int) []Finding {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func lastDecisions(items []Decision, n int) []Decision {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func lastHistory(items []HistoryEntry, n int) []HistoryEntry {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
