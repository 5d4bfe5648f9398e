package analyser

import "testing"

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		name     string
		cliName  string
		helpText string
		want     Family
	}{
		{"claude by name", "claude", "", FamilyAnthropic},
		{"gemini by name", "gemini", "", FamilyGoogle},
		{"qwen by name", "qwen", "", FamilyAlibaba},
		{"iflow by name", "iflow", "", FamilyAlibaba},
		{"codex by name", "codex", "", FamilyOpenAI},
		{"copilot by name", "copilot", "", FamilyGitHub},
		{"unknown name, text hint", "mystery-cli", "Powered by OpenAI models", FamilyOpenAI},
		{"unknown name, no hint", "mystery-cli", "just a generic tool", FamilyGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFamily(tt.cliName, tt.helpText); got != tt.want {
				t.Errorf("DetectFamily(%q, %q) = %q, want %q", tt.cliName, tt.helpText, got, tt.want)
			}
		})
	}
}

func TestExtractOptions(t *testing.T) {
	helpText := `
Usage: mycli [options]

Options:
  -p, --prompt <text>     Prompt text to run
  -y, --yes                Auto-approve all actions
      --non-interactive     Disable interactive prompts
`
	options := ExtractOptions(helpText)
	want := map[string]bool{"-p": true, "--prompt": true, "-y": true, "--yes": true, "--non-interactive": true}
	if len(options) != len(want) {
		t.Fatalf("ExtractOptions() = %v, want keys %v", options, want)
	}
	for _, opt := range options {
		if !want[opt] {
			t.Errorf("unexpected option %q", opt)
		}
	}
}

func TestIdentifyPromptFlag(t *testing.T) {
	helpText := `
  -p, --prompt <text>     Prompt text to run
  -y, --yes                Auto-approve all actions
`
	options := []string{"-p", "--prompt", "-y", "--yes"}
	got := IdentifyPromptFlag(helpText, options)
	if got != "-p" {
		t.Errorf("IdentifyPromptFlag() = %q, want -p", got)
	}
}

func TestIdentifyNonInteractiveFlag(t *testing.T) {
	helpText := `
  -y, --yes                Auto-approve all actions
      --non-interactive     Disable interactive prompts, read from stdin
`
	options := []string{"-y", "--yes", "--non-interactive"}
	got := IdentifyNonInteractiveFlag(helpText, options)
	if got != "--non-interactive" {
		t.Errorf("IdentifyNonInteractiveFlag() = %q, want --non-interactive", got)
	}
}

func TestClassifyInteractionMode(t *testing.T) {
	tests := []struct {
		name                string
		helpText            string
		nonInteractiveFlag  string
		want                InteractionMode
	}{
		{"non-interactive flag wins", "anything", "--non-interactive", ModeNonInteractive},
		{"stdin mention", "reads from stdin when piped", "", ModeStdinSupport},
		{"pipe mention", "supports piping input", "", ModeStdinSupport},
		{"batch mention", "supports batch mode for scripts", "", ModeBatchMode},
		{"default interactive", "a friendly chat assistant", "", ModeInteractive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyInteractionMode(tt.helpText, tt.nonInteractiveFlag); got != tt.want {
				t.Errorf("ClassifyInteractionMode() = %q, want %q", got, tt.want)
			}
		})
	}
}
