package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/cherrypick/internal/actionenv"
	"github.com/temirov/cherrypick/internal/cherrypick"
	"github.com/temirov/cherrypick/internal/execshell"
	"github.com/temirov/cherrypick/internal/gitrepo"
	"github.com/temirov/cherrypick/internal/utils"
	flagutils "github.com/temirov/cherrypick/internal/utils/flags"
	pathutils "github.com/temirov/cherrypick/internal/utils/path"
)

const (
	applicationNameConstant                 = "cherrypick"
	applicationShortDescriptionConstant     = "Cherry-pick a merged commit onto another branch and open a pull request"
	applicationLongDescriptionConstant      = "cherrypick applies the triggering commit onto a target branch in a fresh working branch, pushes it to the destination repository, and opens a pull request carrying the original labels, assignees, and reviewers."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	envFileFlagNameConstant                 = "env-file"
	envFileFlagUsageConstant                = "Environment file loaded before configuration is resolved. Missing files are ignored unless the flag is set explicitly."
	defaultEnvFilePathConstant              = ".env"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "CHERRYPICK"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	remoteProtocolChoiceNameConstant        = "remote protocol"
)

var remoteProtocolChoice = flagutils.Choice{
	Name:          remoteProtocolChoiceNameConstant,
	DefaultChoice: string(gitrepo.RemoteProtocolSSH),
	Choices:       []string{string(gitrepo.RemoteProtocolSSH), string(gitrepo.RemoteProtocolHTTPS)},
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Inputs ActionInputsConfiguration      `mapstructure:"inputs"`
	Run    RunSettingsConfiguration       `mapstructure:"run"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ActionInputsConfiguration mirrors the action inputs. List inputs accept comma or newline separated strings.
type ActionInputsConfiguration struct {
	Token                string   `mapstructure:"token"`
	Committer            string   `mapstructure:"committer"`
	Author               string   `mapstructure:"author"`
	Branch               string   `mapstructure:"branch"`
	Labels               []string `mapstructure:"labels"`
	ExcludeLabels        []string `mapstructure:"exclude_labels"`
	Assignees            []string `mapstructure:"assignees"`
	Reviewers            []string `mapstructure:"reviewers"`
	TeamReviewers        []string `mapstructure:"team_reviewers"`
	TitlePrefix          string   `mapstructure:"title_prefix"`
	CherryPickRepository string   `mapstructure:"cherry_pick_repo"`
}

// RunSettingsConfiguration holds settings that are not action inputs but shape how a run executes.
type RunSettingsConfiguration struct {
	WorkingDirectory string        `mapstructure:"working_directory"`
	RemoteName       string        `mapstructure:"remote_name"`
	RemoteProtocol   string        `mapstructure:"remote_protocol"`
	RemoteHost       string        `mapstructure:"remote_host"`
	APIURL           string        `mapstructure:"api_url"`
	SourceRepository string        `mapstructure:"source_repository"`
	CommitSHA        string        `mapstructure:"sha"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type inputBinding struct {
	configurationKey string
	flagName         string
	flagUsage        string
	actionInputName  string
	durationFlag     bool
}

var inputBindings = []inputBinding{
	{configurationKey: "inputs.token", flagName: "token", flagUsage: "GitHub token used to open the pull request. Falls back to GITHUB_TOKEN or GH_TOKEN.", actionInputName: "INPUT_TOKEN"},
	{configurationKey: "inputs.committer", flagName: "committer", flagUsage: "Committer identity as \"Display Name <email>\".", actionInputName: "INPUT_COMMITTER"},
	{configurationKey: "inputs.author", flagName: "author", flagUsage: "Author identity as \"Display Name <email>\".", actionInputName: "INPUT_AUTHOR"},
	{configurationKey: "inputs.branch", flagName: "branch", flagUsage: "Target branch the commit is cherry-picked onto.", actionInputName: "INPUT_BRANCH"},
	{configurationKey: "inputs.labels", flagName: "labels", flagUsage: "Comma separated labels for the new pull request.", actionInputName: "INPUT_LABELS"},
	{configurationKey: "inputs.exclude_labels", flagName: "exclude-labels", flagUsage: "Comma separated triggering labels that are not copied.", actionInputName: "INPUT_EXCLUDE-LABELS"},
	{configurationKey: "inputs.assignees", flagName: "assignees", flagUsage: "Comma separated assignees for the new pull request.", actionInputName: "INPUT_ASSIGNEES"},
	{configurationKey: "inputs.reviewers", flagName: "reviewers", flagUsage: "Comma separated reviewers for the new pull request.", actionInputName: "INPUT_REVIEWERS"},
	{configurationKey: "inputs.team_reviewers", flagName: "team-reviewers", flagUsage: "Comma separated team reviewers for the new pull request.", actionInputName: "INPUT_TEAM-REVIEWERS"},
	{configurationKey: "inputs.title_prefix", flagName: "title-prefix", flagUsage: "Prefix prepended to the original pull request title.", actionInputName: "INPUT_TITLE-PREFIX"},
	{configurationKey: "inputs.cherry_pick_repo", flagName: "cherry-pick-repo", flagUsage: "Destination repository (owner/repo) that receives the working branch.", actionInputName: "INPUT_CHERRY-PICK-REPO"},
	{configurationKey: "run.working_directory", flagName: "working-directory", flagUsage: "Git clone the commands run in."},
	{configurationKey: "run.remote_name", flagName: "remote-name", flagUsage: "Name of the remote added for the destination repository."},
	{configurationKey: "run.remote_protocol", flagName: "remote-protocol", flagUsage: remoteProtocolChoice.Usage("Protocol of the destination remote URL.")},
	{configurationKey: "run.remote_host", flagName: "remote-host", flagUsage: "Host of the destination remote URL."},
	{configurationKey: "run.api_url", flagName: "api-url", flagUsage: "GitHub REST API base URL, for GitHub Enterprise."},
	{configurationKey: "run.source_repository", flagName: "source-repo", flagUsage: "Repository (owner/repo) the pull request is opened in. Defaults to GITHUB_REPOSITORY."},
	{configurationKey: "run.sha", flagName: "sha", flagUsage: "Commit to cherry-pick. Defaults to GITHUB_SHA."},
	{configurationKey: "run.timeout", flagName: "run-timeout", flagUsage: "Optional bound on the whole run, for example 10m. Zero disables it.", durationFlag: true},
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand               *cobra.Command
	configurationLoader       *utils.ConfigurationLoader
	loggerFactory             *utils.LoggerFactory
	logger                    *zap.Logger
	consoleLogger             *zap.Logger
	configuration             ApplicationConfiguration
	configurationMetadata     utils.LoadedConfiguration
	configurationFilePath     string
	logLevelFlagValue         string
	logFormatFlagValue        string
	envFileFlagValue          string
	homeExpander              *pathutils.HomeExpander
	environmentLookup         actionenv.EnvironmentLookup
	commandRunner             execshell.CommandRunner
	httpClient                *http.Client
	workflowOutput            io.Writer
	branchIdentifierGenerator cherrypick.BranchIdentifierGenerator
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		consoleLogger:       zap.NewNop(),
		homeExpander:        pathutils.NewHomeExpander(),
		commandRunner:       execshell.NewOSCommandRunner(),
		workflowOutput:      os.Stdout,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runCherryPick(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.envFileFlagValue, envFileFlagNameConstant, defaultEnvFilePathConstant, envFileFlagUsageConstant)

	for _, binding := range inputBindings {
		if binding.durationFlag {
			cobraCommand.Flags().Duration(binding.flagName, 0, binding.flagUsage)
		} else {
			cobraCommand.Flags().String(binding.flagName, "", binding.flagUsage)
		}
		configurationLoader.BindFlag(binding.configurationKey, cobraCommand.Flags().Lookup(binding.flagName))
		if len(binding.actionInputName) > 0 {
			configurationLoader.BindEnvironmentVariables(binding.configurationKey, binding.actionInputName)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	envFileRequired := application.persistentFlagChanged(command, envFileFlagNameConstant)
	envFilePath := application.homeExpander.Expand(application.envFileFlagValue)
	if loadError := actionenv.LoadEnvironmentFile(envFilePath, envFileRequired); loadError != nil {
		return loadError
	}

	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	configurationFilePath := application.homeExpander.Expand(application.configurationFilePath)
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
