package security

import "testing"

func TestValidateBinaryName(t *testing.T) {
	tests := []struct {
		name    string
		binary  string
		wantErr bool
	}{
		{"bare name", "claude", false},
		{"bare name with dash", "codex-cli", false},
		{"empty", "", true},
		{"absolute path", "/usr/bin/claude", true},
		{"relative path traversal", "../claude", true},
		{"embedded separator", "bin/claude", true},
		{"shell metacharacter", "claude;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBinaryName(tt.binary)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBinaryName(%q) error = %v, wantErr %v", tt.binary, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid UUID", "123e4567-e89b-12d3-a456-426614174000", false},
		{"uppercase rejected", "123E4567-E89B-12D3-A456-426614174000", true},
		{"too short", "123e4567", true},
		{"injection attempt", "123e4567-e89b-12d3-a456-426614174000;rm -rf /", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain string", "hello", "hello"},
		{"newline", "line one\nline two", "line one line two"},
		{"pipe breaks table cell", "a | b", "a / b"},
		{"carriage return and tab", "a\r\tb", "a  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForLog(tt.input); got != tt.want {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
