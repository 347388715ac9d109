package cli

import (
	"os/exec"
	"strings"
)

type startupValidationError struct {
	Shell string
}

func (e startupValidationError) Error() string {
	var b strings.Builder
	b.WriteString("includemin startup validation failed.\n")
	b.WriteString("\nThe shell used to run the check command is not on PATH:\n- ")
	b.WriteString(e.Shell)
	b.WriteString("\n\nSet --shell, ")
	b.WriteString(envShell)
	b.WriteString(", or \"shell\" in ")
	b.WriteString(globalConfigPath())
	b.WriteString(" or .includemin/config.json.")
	return b.String()
}

// validateStartup checks that the check command can be started at all. A check command that cannot be found is not an error: it fails every trial,
// which keeps every directive.
func validateStartup(shell []string) error {
	if len(shell) == 0 {
		return startupValidationError{Shell: "(empty)"}
	}
	if _, err := exec.LookPath(shell[0]); err != nil {
		return startupValidationError{Shell: shell[0]}
	}
	return nil
}
