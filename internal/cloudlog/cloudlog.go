// Package cloudlog mirrors orchestrator activity to both a local logger and,
// optionally, GCP Cloud Logging, and maintains the append-only JSON-lines
// execution log described in the external interfaces.
//
// The cloud sink is nil-safe throughout: when no project is configured,
// every method degrades to local-only logging, mirroring the dual
// local/cloud logger pattern the rest of this codebase uses for anything
// that reports on a running CLI invocation.
package cloudlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/logging"

	"github.com/andywolf/stigmergy/internal/security"
)

// OutcomeRecord is one line of the execution log: a scrubbed summary of an
// ExecutionOutcome, independent of the supervisor package so cloudlog has
// no upward dependency on it.
type OutcomeRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	CLI           string    `json:"cli"`
	Success       bool      `json:"success"`
	ExitCode      *int      `json:"exit_code,omitempty"`
	ElapsedMillis int64     `json:"elapsed_ms"`
	NeedsRecovery bool      `json:"needs_recovery"`
	Error         string    `json:"error,omitempty"`
}

// Sink mirrors log messages and execution outcomes to a local logger, an
// optional Cloud Logging client, and an optional execution.log file.
type Sink struct {
	mu          sync.Mutex
	local       *log.Logger
	cloud       *logging.Logger
	cloudClient *logging.Client
	execLogPath string
	scrubber    *security.Scrubber
}

// Option configures a Sink at construction time.
type Option func(*Sink) error

// WithCloudProject enables the Cloud Logging mirror for the given GCP
// project. If omitted, the sink only logs locally.
func WithCloudProject(ctx context.Context, projectID, logID string) Option {
	return func(s *Sink) error {
		if projectID == "" {
			return nil
		}
		client, err := logging.NewClient(ctx, projectID)
		if err != nil {
			return fmt.Errorf("cloudlog: create logging client: %w", err)
		}
		if logID == "" {
			logID = "stigmergy-orchestrator"
		}
		s.cloudClient = client
		s.cloud = client.Logger(logID)
		return nil
	}
}

// WithExecutionLog enables the append-only JSON-lines execution log at path.
func WithExecutionLog(path string) Option {
	return func(s *Sink) error {
		if path == "" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("cloudlog: create execution log directory: %w", err)
		}
		s.execLogPath = path
		return nil
	}
}

// New creates a Sink that always logs to local (stderr if nil), plus
// whatever optional sinks the given options enable.
func New(local *log.Logger, opts ...Option) (*Sink, error) {
	if local == nil {
		local = log.New(os.Stderr, "", log.LstdFlags)
	}
	s := &Sink{local: local, scrubber: security.NewScrubber()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Info logs an informational message.
func (s *Sink) Info(format string, args ...interface{}) {
	s.log(logging.Info, format, args...)
}

// Warning logs a warning message.
func (s *Sink) Warning(format string, args ...interface{}) {
	s.log(logging.Warning, format, args...)
}

// Error logs an error message.
func (s *Sink) Error(format string, args ...interface{}) {
	s.log(logging.Error, format, args...)
}

func (s *Sink) log(severity logging.Severity, format string, args ...interface{}) {
	msg := s.scrubber.Scrub(fmt.Sprintf(format, args...))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.local.Printf("%s", msg)
	if s.cloud != nil {
		s.cloud.Log(logging.Entry{Payload: msg, Severity: severity, Timestamp: time.Now()})
	}
}

// RecordOutcome scrubs and appends rec as one JSON line to the execution
// log. It is a no-op if no execution log path was configured.
func (s *Sink) RecordOutcome(rec OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.execLogPath == "" {
		return nil
	}

	rec.Error = s.scrubber.Scrub(rec.Error)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cloudlog: marshal outcome record: %w", err)
	}

	f, err := os.OpenFile(s.execLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cloudlog: open execution log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cloudlog: write execution log: %w", err)
	}
	return nil
}

// Close flushes and closes the Cloud Logging client, if one is configured.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cloudClient == nil {
		return nil
	}
	if err := s.cloudClient.Close(); err != nil {
		return fmt.Errorf("cloudlog: close logging client: %w", err)
	}
	return nil
}
