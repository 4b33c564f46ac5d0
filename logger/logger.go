package logger

import (
	"io"
	"os"
	"path/filepath"

	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process-wide zerolog logger. Output goes to stdout and to a
// rotated file under logDir. In debug mode the console writer is used for
// readable output.
func New(logDir string, debug bool) (zerolog.Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return zerolog.Nop(), err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	var console io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if debug {
		console = zerolog.NewConsoleWriter()
		level = zerolog.DebugLevel
	}

	multi := io.MultiWriter(console, logFile)
	log := zerolog.New(multi).Level(level).With().Timestamp().Logger()

	return log, nil
}

// FiberConfig returns the request-logging middleware configuration, writing
// to stdout and a rotated access log.
func FiberConfig(logDir string) (*fiberLogger.Config, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	accessLog := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "access.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, accessLog)

	config := &fiberLogger.Config{
		Output:     multiWriter,
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}

	return config, nil
}
