package actionenv

import (
	"fmt"
	"io"
	"strings"
)

const (
	groupCommandTemplateConstant   = "::group::%s\n"
	endGroupCommandConstant        = "::endgroup::\n"
	warningCommandTemplateConstant = "::warning::%s\n"
	errorCommandTemplateConstant   = "::error::%s\n"
)

var workflowCommandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// WorkflowCommandWriter emits GitHub Actions workflow commands so the runner folds log groups
// and annotates warnings and errors.
type WorkflowCommandWriter struct {
	writer io.Writer
}

// NewWorkflowCommandWriter constructs a writer; the runner reads commands from standard output.
func NewWorkflowCommandWriter(writer io.Writer) *WorkflowCommandWriter {
	return &WorkflowCommandWriter{writer: writer}
}

// StartGroup opens a collapsible log group.
func (commandWriter *WorkflowCommandWriter) StartGroup(name string) {
	commandWriter.emit(groupCommandTemplateConstant, name)
}

// EndGroup closes the current log group.
func (commandWriter *WorkflowCommandWriter) EndGroup() {
	if commandWriter == nil || commandWriter.writer == nil {
		return
	}
	_, _ = io.WriteString(commandWriter.writer, endGroupCommandConstant)
}

// Warning annotates the run with a warning.
func (commandWriter *WorkflowCommandWriter) Warning(message string) {
	commandWriter.emit(warningCommandTemplateConstant, message)
}

// Error annotates the run with an error; the CLI uses it for the terminal failure reason.
func (commandWriter *WorkflowCommandWriter) Error(message string) {
	commandWriter.emit(errorCommandTemplateConstant, message)
}

func (commandWriter *WorkflowCommandWriter) emit(template string, value string) {
	if commandWriter == nil || commandWriter.writer == nil {
		return
	}
	_, _ = fmt.Fprintf(commandWriter.writer, template, workflowCommandEscaper.Replace(value))
}
