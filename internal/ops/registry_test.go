/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRegistry_BasicRegistration(t *testing.T) {
	registry := NewRegistry()
	testCmd := &cobra.Command{Use: "test", Short: "Test command"}

	if err := registry.Register("test", GroupSupport, CategoryInformation, testCmd, "A test command"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	cmd, exists := registry.GetCommand("test")
	if !exists {
		t.Fatal("Expected command to exist after registration")
	}
	if cmd.Group != GroupSupport || cmd.Category != CategoryInformation {
		t.Errorf("unexpected classification %s/%s", cmd.Group, cmd.Category)
	}
	if cmd.Command != testCmd {
		t.Error("Expected command object to match registered command")
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	c := &cobra.Command{Use: "dup"}

	if err := registry.Register("dup", GroupSpec, CategoryKernel, c, "first"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := registry.Register("dup", GroupSpec, CategoryKernel, c, "second")
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestRegistry_GroupsSortedByName(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"import", "export"} {
		_ = registry.Register(name, GroupInterop, CategoryExport, &cobra.Command{Use: name}, name)
	}

	got := registry.GetCommandsByGroup(GroupInterop)
	if len(got) != 2 || got[0].Name != "export" || got[1].Name != "import" {
		t.Errorf("unexpected order: %v, %v", got[0].Name, got[1].Name)
	}
	if n := registry.ListGroups()[GroupInterop]; n != 2 {
		t.Errorf("ListGroups()[interop] = %d, want 2", n)
	}
}

func TestValidate_CoreCommands(t *testing.T) {
	registry := NewRegistry()
	for name, cls := range CoreCommands {
		_ = registry.Register(name, cls.Group, cls.Category, &cobra.Command{Use: name}, name)
	}
	if errs := Validate(registry, nil); len(errs) != 0 {
		t.Fatalf("expected no errors, got:\n%s", FormatErrors(errs))
	}
}

func TestValidate_Misclassified(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("export", GroupSupport, CategoryExport, &cobra.Command{Use: "export"}, "")

	errs := FilterErrorsBySeverity(Validate(registry, nil), SeverityError)
	var sawMissing, sawWrong, sawPair bool
	for _, e := range errs {
		switch {
		case e.Command == "import" && strings.Contains(e.Message, "not registered"):
			sawMissing = true
		case e.Command == "export" && strings.Contains(e.Message, "expected interop/export"):
			sawWrong = true
		case e.Command == "export" && strings.Contains(e.Message, "not allowed"):
			sawPair = true
		}
	}
	if !sawMissing || !sawWrong || !sawPair {
		t.Errorf("missing expected errors:\n%s", FormatErrors(errs))
	}
}

func TestValidate_UnclassifiedSubcommand(t *testing.T) {
	registry := NewRegistry()
	root := &cobra.Command{Use: "rgd"}
	root.AddCommand(&cobra.Command{Use: "stray", Run: func(*cobra.Command, []string) {}})

	warns := FilterErrorsBySeverity(Validate(registry, root), SeverityWarning)
	if len(warns) != 1 || warns[0].Command != "stray" {
		t.Errorf("expected one warning for stray, got %v", warns)
	}
}

func TestFormatErrors_Empty(t *testing.T) {
	if got := FormatErrors(nil); got != "No validation errors found" {
		t.Errorf("FormatErrors(nil) = %q", got)
	}
}
