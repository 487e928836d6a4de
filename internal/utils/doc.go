// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses the ConfigurationLoader and LoggerFactory abstractions
// that wire Viper-backed configuration and zap logging into the CLI.
package utils
