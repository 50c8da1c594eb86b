// Package logging provides the process-wide structured logger used by
// every component of the SDK bundle assembler, built on arbor.
package logging

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	arborcommon "github.com/ternarybob/arbor/common"
	"github.com/ternarybob/arbor/models"

	"github.com/crossbuild/sdkgen/internal/config"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// Get returns the global logger instance. If Setup hasn't run yet it
// falls back to a console-only logger so early-boot code can still log.
func Get() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(writerConfig(models.LogWriterTypeConsole, "", "info"))
		globalLogger.Warn().Msg("Using fallback logger - logging.Setup was not called during startup")
	}
	return globalLogger
}

// Init installs logger as the process-wide singleton.
func Init(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// Setup builds the logger from Paths and the resolved verbosity: a
// console writer always, plus a file writer under
// <source_root>/.sdkgen/logs/sdkgen.log.
func Setup(paths config.Paths, verbose bool) arbor.ILogger {
	level := "info"
	if verbose {
		level = "debug"
	}

	logger := arbor.NewLogger().WithConsoleWriter(writerConfig(models.LogWriterTypeConsole, "", level))

	logsDir := filepath.Join(paths.SourceRoot, ".sdkgen", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		logger.Warn().Err(err).Str("logs_dir", logsDir).Msg("failed to create logs directory; file logging disabled")
	} else {
		logFile := filepath.Join(logsDir, "sdkgen.log")
		logger = logger.WithFileWriter(writerConfig(models.LogWriterTypeFile, logFile, level))
	}

	logger = logger.WithLevelFromString(level)

	Init(logger)
	return logger
}

func writerConfig(writerType models.LogWriterType, filename, level string) models.WriterConfiguration {
	_ = level
	return models.WriterConfiguration{
		Type:       writerType,
		FileName:   filename,
		TimeFormat: "15:04:05.000",
		OutputType: models.OutputFormatLogfmt,
		MaxSize:    50 * 1024 * 1024,
		MaxBackups: 3,
	}
}

// Stop flushes any remaining buffered logs before process exit. Safe to
// call multiple times.
func Stop() {
	arborcommon.Stop()
}
