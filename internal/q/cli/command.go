// Package cli runs a single command-line command: it parses flags and positional args, prints help, and maps handler errors to process exit codes.
package cli

// RunFunc is a command handler.
type RunFunc func(c *Context) error

// ArgsFunc validates positional args. It should return a UsageError (or any ExitCoder with code 2) for user-facing usage mistakes.
type ArgsFunc func(args []string) error

// Command defines the program's one command.
type Command struct {
	// Name is the program name shown in help (ex: "includemin").
	Name string

	Short string
	Long  string

	// Usage describes positional args in the usage line (ex: "<file>..."). Optional.
	Usage string

	Example string

	Args ArgsFunc // optional
	Run  RunFunc  // required

	flags *FlagSet
}

// Flags returns c's flags.
func (c *Command) Flags() *FlagSet {
	if c.flags == nil {
		c.flags = newFlagSet()
	}
	return c.flags
}
