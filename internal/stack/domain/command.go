package domain

import "strings"

// Operation is the helm verb a command performs.
type Operation string

const (
	OperationUpgrade    Operation = "upgrade"
	OperationDelete     Operation = "delete"
	OperationGet        Operation = "get"
	OperationRepoAdd    Operation = "repo add"
	OperationRepoUpdate Operation = "repo update"
)

// Command is a fully synthesized invocation of an external binary.
type Command struct {
	Operation Operation
	Release   string // empty for repository commands
	Binary    string
	Args      []string
}

// Argv returns the binary followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Binary)
	return append(argv, c.Args...)
}

// String renders the command for logs. Arguments are not shell-quoted.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}
