package config

import (
	"strings"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		expectError bool
		errContains string
	}{
		{name: "empty document", data: ""},
		{name: "valid subset", data: "spec:\n  dir: robot_spec\nexport:\n  update_rate: 250\n"},
		{name: "json is yaml", data: `{"unified": {"base_name": "my_robot"}}`},
		{name: "unknown top-level key", data: "format:\n  go: {}\n", expectError: true, errContains: "validation failed"},
		{name: "bad update rate", data: "export:\n  update_rate: 0\n", expectError: true, errContains: "update_rate"},
		{name: "base name with separator", data: "unified:\n  base_name: a/b\n", expectError: true},
		{name: "not yaml", data: "spec: [unclosed", expectError: true, errContains: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig([]byte(tt.data))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.data)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not mention %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
