package synthesiser

import (
	"reflect"
	"testing"

	"github.com/andywolf/stigmergy/internal/registry"
)

func TestSynthesisePositionalTemplate(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "qwen",
		InvocationTemplate: registry.TemplatePositional,
		AutoApproveFlags:   []string{"-y"},
	}
	got := Synthesise(d, "sum 1..10", Context{})
	want := []string{"sum 1..10", "-y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesise() = %v, want %v", got, want)
	}
}

func TestSynthesiseFlagTemplate(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "gemini",
		InvocationTemplate: registry.TemplateFlagAutoApprove,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--yolo"},
	}
	got := Synthesise(d, "refactor X", Context{})
	want := []string{"-p", "refactor X", "--yolo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesise() = %v, want %v", got, want)
	}
}

func TestSynthesiseSkipPermissionsTemplate(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "claude",
		InvocationTemplate: registry.TemplateSkipPermissions,
		PromptFlag:         "-p",
		AllowedTools:       []string{"Bash", "Edit", "Read", "Write", "RunCommand", "ComputerTools"},
	}
	got := Synthesise(d, "fix the bug", Context{})
	want := []string{"-p", "fix the bug", "--dangerously-skip-permissions", "--allowed-tools", "Bash,Edit,Read,Write,RunCommand,ComputerTools"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesise() = %v, want %v", got, want)
	}
}

func TestSynthesisePrependsContext(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "qwen",
		InvocationTemplate: registry.TemplatePositional,
		AutoApproveFlags:   []string{"-y"},
	}
	got := Synthesise(d, "sum 1..10", Context{IncludeContext: true, ContextHeader: "Project: demo"})
	want := []string{"Project: demo\n\nsum 1..10", "-y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesise() = %v, want %v", got, want)
	}
}

func TestSynthesiseRewritesSkillPhrase(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "claude",
		InvocationTemplate: registry.TemplatePositional,
		AutoApproveFlags:   []string{"-y"},
		AgentSkillCaps: registry.AgentSkillCaps{
			SupportsSkills:      true,
			RequiresSkillPrefix: true,
		},
	}
	got := Synthesise(d, "run an alienation analysis here", Context{})
	want := []string{"run an skill:alienation-analysis here", "-y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesise() = %v, want %v", got, want)
	}
}

func TestSynthesiseDeterministic(t *testing.T) {
	d := registry.CliDescriptor{
		Name:               "codex",
		InvocationTemplate: registry.TemplateFlag,
		PromptFlag:         "exec",
		AutoApproveFlags:   []string{"--full-auto"},
	}
	ctx := Context{IncludeContext: true, ContextHeader: "hdr"}

	first := Synthesise(d, "task", ctx)
	second := Synthesise(d, "task", ctx)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Synthesise() is not deterministic: %v != %v", first, second)
	}
}

func TestSynthesiseNoAutoApproveFlagsNeverLeavesItOut(t *testing.T) {
	// No run that completes should re-enable interactivity: every
	// template must carry the descriptor's configured auto-approve
	// flags through to argv verbatim.
	d := registry.CliDescriptor{
		Name:               "kode",
		InvocationTemplate: registry.TemplateFlag,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--dangerously-skip-permissions"},
	}
	got := Synthesise(d, "task", Context{})
	found := false
	for _, arg := range got {
		if arg == "--dangerously-skip-permissions" {
			found = true
		}
	}
	if !found {
		t.Errorf("Synthesise() = %v, missing auto-approve flag", got)
	}
}
