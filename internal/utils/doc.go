// Package utils exposes reusable helpers consumed by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files,
// environment variables (including GitHub Actions INPUT_* names), and
// command-line flags through Viper, decoding comma separated list inputs with
// a mapstructure hook. LoggerFactory builds the zap diagnostic and console
// loggers.
package utils
