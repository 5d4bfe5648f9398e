package supervisor

import (
	"regexp"
	"sync"
	"time"
)

// interactionPattern recognizes tokens that indicate a child CLI is
// waiting for human input on a terminal it doesn't have.
var interactionPattern = regexp.MustCompile(`(?i)` +
	`\(y/n\)|` +
	`>\s*>\s*>|` +
	`continue\?|` +
	`press any key|` +
	`press enter|` +
	`\[y/n\]|` +
	`do you want to|` +
	`waiting for input`)

// maxTailWindow bounds how much trailing output the scanner keeps in
// memory, long enough to catch the longest recognized prompt phrase.
const maxTailWindow = 512

// PromptScanner watches a stream of stdout chunks for an interactive
// prompt, debouncing so a CLI that merely prints prose matching the
// pattern isn't killed on the spot. Detection fires only when the pattern
// sits at the very tail of the observed output and stays there through an
// idle period, per the design notes' tail-or-idle rule.
type PromptScanner struct {
	debounce time.Duration
	onDetect func()

	mu         sync.Mutex
	tail       []byte
	timer      *time.Timer
	generation int
	detected   bool
}

// NewPromptScanner creates a scanner that calls onDetect at most once,
// after the interaction pattern has sat at the tail of the stream for
// debounce without being overwritten by further output.
func NewPromptScanner(debounce time.Duration, onDetect func()) *PromptScanner {
	return &PromptScanner{debounce: debounce, onDetect: onDetect}
}

// Write implements io.Writer so the scanner can sit in an io.MultiWriter
// alongside the caller's own stdout and a capture buffer.
func (s *PromptScanner) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detected {
		return len(p), nil
	}

	s.tail = append(s.tail, p...)
	if len(s.tail) > maxTailWindow {
		s.tail = s.tail[len(s.tail)-maxTailWindow:]
	}

	loc := interactionPattern.FindIndex(s.tail)
	atTail := loc != nil && loc[1] == len(s.tail)

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if atTail {
		s.generation++
		gen := s.generation
		s.timer = time.AfterFunc(s.debounce, func() {
			s.fire(gen)
		})
	}

	return len(p), nil
}

func (s *PromptScanner) fire(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detected || gen != s.generation {
		return
	}
	s.detected = true
	if s.onDetect != nil {
		s.onDetect()
	}
}

// Detected reports whether the scanner has fired.
func (s *PromptScanner) Detected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detected
}

// Stop cancels any pending debounce timer without firing it, used when the
// child exits before the debounce window elapses.
func (s *PromptScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
