package buildinfo

import "testing"

func TestBinaryVersionDefault(t *testing.T) {
	if BinaryVersion != "dev" {
		t.Errorf("Expected BinaryVersion to be 'dev', got '%s'", BinaryVersion)
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Fatal("Version() should never be empty")
	}

	old := BinaryVersion
	t.Cleanup(func() { BinaryVersion = old })
	BinaryVersion = "v1.2.3"
	if got := Version(); got != "v1.2.3" {
		t.Errorf("Version() = %q, want stamped v1.2.3", got)
	}
}
