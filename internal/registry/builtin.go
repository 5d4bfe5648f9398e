package registry

// builtin is the shipping-build table of known CLI descriptors. Users may
// override individual fields via configuration (see Load), but no runtime
// mutation path exists beyond a config reload.
var builtin = map[string]CliDescriptor{
	"claude": {
		Name:               "claude",
		Binary:             "claude",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateSkipPermissions,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--dangerously-skip-permissions"},
		AllowedTools:       []string{"Bash", "Edit", "Read", "Write", "RunCommand", "ComputerTools"},
		Fallback:           "codex",
		ResumeCommand:      []string{"--continue"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills:      true,
			RequiresSkillPrefix: false,
			Keywords:            []string{"skill", "agent"},
		},
	},
	"gemini": {
		Name:               "gemini",
		Binary:             "gemini",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlagAutoApprove,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--yolo"},
		Fallback:           "qwen",
		ResumeCommand:      []string{"--checkpointing", "--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"qwen": {
		Name:               "qwen",
		Binary:             "qwen",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplatePositional,
		AutoApproveFlags:   []string{"-y"},
		Fallback:           "iflow",
		ResumeCommand:      []string{"--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"iflow": {
		Name:               "iflow",
		Binary:             "iflow",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplatePositional,
		AutoApproveFlags:   []string{"-y"},
		Fallback:           "qwen",
		ResumeCommand:      []string{"--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"qodercli": {
		Name:               "qodercli",
		Binary:             "qodercli",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlagAutoApprove,
		PromptFlag:         "--prompt",
		AutoApproveFlags:   []string{"--allow-all-tools"},
		Fallback:           "codebuddy",
		ResumeCommand:      []string{"--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills:      true,
			RequiresSkillPrefix: true,
			Keywords:            []string{"skill"},
		},
	},
	"codebuddy": {
		Name:               "codebuddy",
		Binary:             "codebuddy",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlagAutoApprove,
		PromptFlag:         "--prompt",
		AutoApproveFlags:   []string{"--yes"},
		Fallback:           "qodercli",
		ResumeCommand:      []string{"--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"codex": {
		Name:               "codex",
		Binary:             "codex",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlagAutoApprove,
		PromptFlag:         "exec",
		AutoApproveFlags:   []string{"--full-auto"},
		Fallback:           "claude",
		ResumeCommand:      []string{"--resume", "last"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"copilot": {
		Name:               "copilot",
		Binary:             "copilot",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlagAutoApprove,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--allow-all-tools"},
		Fallback:           "codex",
		ResumeCommand:      []string{"--resume"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills: false,
		},
	},
	"kode": {
		Name:               "kode",
		Binary:             "kode",
		VersionProbe:       []string{"--version"},
		HelpProbes:         [][]string{{"--help"}, {"-h"}, {"help"}, {}},
		InvocationTemplate: TemplateFlag,
		PromptFlag:         "-p",
		AutoApproveFlags:   []string{"--dangerously-skip-permissions"},
		Fallback:           "claude",
		ResumeCommand:      []string{"--continue"},
		AgentSkillCaps: AgentSkillCaps{
			SupportsSkills:      true,
			RequiresSkillPrefix: false,
			Keywords:            []string{"skill", "agent"},
		},
	},
}
