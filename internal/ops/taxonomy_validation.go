/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// CommandClassification is the expected placement of a core command
type CommandClassification struct {
	Group    CommandGroup
	Category CommandCategory
}

// ErrorSeverity represents the severity of validation errors
type ErrorSeverity int

const (
	SeverityError ErrorSeverity = iota
	SeverityWarning
)

// ValidationError represents a taxonomy validation error
type ValidationError struct {
	Severity ErrorSeverity
	Command  string
	Message  string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	sev := "ERROR"
	if e.Severity == SeverityWarning {
		sev = "WARNING"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, e.Command, e.Message)
}

// CoreCommands is the classification every rgd build must register.
var CoreCommands = map[string]CommandClassification{
	"compile-spec":   {Group: GroupSpec, Category: CategoryCompilation},
	"build-standard": {Group: GroupSpec, Category: CategoryCompilation},
	"integrity":      {Group: GroupSpec, Category: CategoryValidation},
	"check":          {Group: GroupSpec, Category: CategoryKernel},
	"boot":           {Group: GroupSpec, Category: CategoryKernel},
	"export":         {Group: GroupInterop, Category: CategoryExport},
	"import":         {Group: GroupInterop, Category: CategoryImport},
	"domains":        {Group: GroupSupport, Category: CategoryInformation},
	"version":        {Group: GroupSupport, Category: CategoryInformation},
}

var allowedCategories = map[CommandGroup][]CommandCategory{
	GroupSpec:    {CategoryCompilation, CategoryValidation, CategoryKernel},
	GroupInterop: {CategoryExport, CategoryImport},
	GroupSupport: {CategoryInformation},
}

// Validate checks that every core command is registered where expected and
// that every registration uses an allowed group/category pair. When root is
// non-nil, visible subcommands missing from the registry are reported as
// warnings since grouped help would hide them.
func Validate(registry *Registry, root *cobra.Command) []ValidationError {
	var errs []ValidationError

	for _, name := range sortedKeys(CoreCommands) {
		expected := CoreCommands[name]
		reg, ok := registry.GetCommand(name)
		if !ok {
			errs = append(errs, ValidationError{SeverityError, name, "core command is not registered"})
			continue
		}
		if reg.Group != expected.Group || reg.Category != expected.Category {
			errs = append(errs, ValidationError{SeverityError, name,
				fmt.Sprintf("expected %s/%s, got %s/%s", expected.Group, expected.Category, reg.Group, reg.Category)})
		}
	}

	all := registry.GetAllCommands()
	for _, name := range sortedKeys(all) {
		reg := all[name]
		if !categoryAllowed(reg.Group, reg.Category) {
			errs = append(errs, ValidationError{SeverityError, name,
				fmt.Sprintf("category %s not allowed for group %s", reg.Category, reg.Group)})
		}
	}

	if root != nil {
		for _, c := range root.Commands() {
			if c.Hidden || !c.IsAvailableCommand() || c.Name() == "help" || c.Name() == "completion" {
				continue
			}
			if _, ok := all[c.Name()]; !ok {
				errs = append(errs, ValidationError{SeverityWarning, c.Name(), "command is not classified"})
			}
		}
	}
	return errs
}

func categoryAllowed(g CommandGroup, c CommandCategory) bool {
	for _, allowed := range allowedCategories[g] {
		if allowed == c {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterErrorsBySeverity returns errors of a specific severity
func FilterErrorsBySeverity(errors []ValidationError, severity ErrorSeverity) []ValidationError {
	var filtered []ValidationError
	for _, err := range errors {
		if err.Severity == severity {
			filtered = append(filtered, err)
		}
	}
	return filtered
}

// FormatErrors formats validation errors for display
func FormatErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors found"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d validation errors:\n", len(errors))
	for i, err := range errors {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}
