package validation

import (
	"fmt"
	"regexp"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName accepts plain SQL identifiers. Table names travel into
// quoted identifiers, so this is belt and suspenders against typos more than
// against injection.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q: expected letters, digits and underscores", name)
	}
	return nil
}

// ValidateConsistency checks a read-consistency level flag value.
func ValidateConsistency(level string) error {
	switch level {
	case "", "none", "weak", "linearizable", "strong":
		return nil
	}
	return fmt.Errorf("invalid consistency level %q: expected none, weak, linearizable or strong", level)
}
