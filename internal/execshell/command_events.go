package execshell

// CommandEventObserver receives lifecycle notifications for git command execution.
type CommandEventObserver interface {
	// CommandStarted is called before the command is handed to the runner.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called once the runner returns a result, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports runner failures that produced no result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
