package ui

import (
	"go.uber.org/zap"
)

const (
	stageStartedMessageConstant  = "stage started"
	stageFinishedMessageConstant = "stage finished"
	logFieldStageConstant        = "stage"
)

// LogProgressReporter reports run stages and warnings through zap when no workflow runner is present.
type LogProgressReporter struct {
	logger       *zap.Logger
	currentStage string
}

// NewLogProgressReporter constructs a reporter writing to the provided logger.
func NewLogProgressReporter(logger *zap.Logger) *LogProgressReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogProgressReporter{logger: logger}
}

// StartGroup records the beginning of a named stage.
func (reporter *LogProgressReporter) StartGroup(stageName string) {
	reporter.currentStage = stageName
	reporter.logger.Info(stageStartedMessageConstant, zap.String(logFieldStageConstant, stageName))
}

// EndGroup records the end of the current stage.
func (reporter *LogProgressReporter) EndGroup() {
	if len(reporter.currentStage) == 0 {
		return
	}
	reporter.logger.Debug(stageFinishedMessageConstant, zap.String(logFieldStageConstant, reporter.currentStage))
	reporter.currentStage = ""
}

// Warning records a recoverable problem.
func (reporter *LogProgressReporter) Warning(message string) {
	reporter.logger.Warn(message, zap.String(logFieldStageConstant, reporter.currentStage))
}
