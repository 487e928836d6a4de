package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugNameConstant        = "debug"
	logLevelInfoNameConstant         = "info"
	logLevelWarnNameConstant         = "warn"
	logLevelErrorNameConstant        = "error"
	logFormatStructuredNameConstant  = "structured"
	logFormatConsoleNameConstant     = "console"
	structuredEncodingNameConstant   = "json"
	consoleEncodingNameConstant      = "console"
	unknownLogLevelTemplateConstant  = "unknown log level %q"
	unknownLogFormatTemplateConstant = "unknown log format %q"
)

// LogLevel selects the minimum severity a logger emits.
type LogLevel string

// Log levels accepted in configuration and on the command line.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugNameConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoNameConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnNameConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorNameConstant)
)

// LogFormat selects the output encoding. Structured logs are machine-readable
// JSON; console logs are line-oriented for interactive fleet runs.
type LogFormat string

// Log formats accepted in configuration and on the command line.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredNameConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleNameConstant)
)

// LoggerFactory builds the process-wide zap logger every command shares.
type LoggerFactory struct{}

// NewLoggerFactory constructs a logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger builds a zap logger for the requested level and format. An
// unrecognized level or format is a configuration mistake and is reported
// instead of being silently defaulted.
func (factory *LoggerFactory) CreateLogger(requestedLevel LogLevel, requestedFormat LogFormat) (*zap.Logger, error) {
	zapLevel, levelError := resolveZapLevel(requestedLevel)
	if levelError != nil {
		return nil, levelError
	}

	encodingName, encodingError := resolveEncoding(requestedFormat)
	if encodingError != nil {
		return nil, encodingError
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLevel)
	loggerConfiguration.Encoding = encodingName
	if requestedFormat == LogFormatConsole {
		loggerConfiguration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		loggerConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		loggerConfiguration.DisableStacktrace = true
	}

	return loggerConfiguration.Build()
}

func resolveZapLevel(requestedLevel LogLevel) (zapcore.Level, error) {
	switch requestedLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unknownLogLevelTemplateConstant, string(requestedLevel))
	}
}

func resolveEncoding(requestedFormat LogFormat) (string, error) {
	switch requestedFormat {
	case LogFormatStructured:
		return structuredEncodingNameConstant, nil
	case LogFormatConsole:
		return consoleEncodingNameConstant, nil
	default:
		return "", fmt.Errorf(unknownLogFormatTemplateConstant, string(requestedFormat))
	}
}
