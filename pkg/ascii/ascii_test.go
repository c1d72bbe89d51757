package ascii

import (
	"bytes"
	"strings"
	"testing"
)

func TestBox(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "single line",
			lines: []string{"Hello"},
			want:  "┌───────┐\n│ Hello │\n└───────┘\n",
		},
		{
			name:  "multiple lines",
			lines: []string{"Line 1", "Longer line here", "Short"},
			want: "┌──────────────────┐\n" +
				"│ Line 1           │\n" +
				"│ Longer line here │\n" +
				"│ Short            │\n" +
				"└──────────────────┘\n",
		},
		{
			name:  "wide runes",
			lines: []string{"関節", "ab"},
			want:  "┌──────┐\n│ 関節 │\n│ ab   │\n└──────┘\n",
		},
		{
			name:  "empty",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Box(tt.lines); got != tt.want {
				t.Errorf("Box() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestTitledBox(t *testing.T) {
	got := TitledBox("Prompt", []string{"SYSTEM IDENTITY: bot"})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "┌ Prompt ─") {
		t.Errorf("title not in top border: %q", lines[0])
	}
	for _, l := range lines {
		if StringWidth(l) != StringWidth(lines[0]) {
			t.Errorf("ragged box line %q", l)
		}
	}

	// a long title widens the box
	got = TitledBox("A much longer title", []string{"x"})
	if !strings.Contains(got, "│ x                   │") {
		t.Errorf("box not widened for title:\n%s", got)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, [][]string{
		{"DOMAIN", "FILES", "ALIASES"},
		{"01_foundation", "3", "01, foundation"},
	})
	want := "DOMAIN         FILES  ALIASES\n" +
		"01_foundation  3      01, foundation\n"
	if buf.String() != want {
		t.Errorf("Table() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTruncateForBox(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncate me", 8, "trunc..."},
		{"abc", 2, "ab"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateForBox(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateForBox(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
