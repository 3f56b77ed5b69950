package common

import (
	"io"
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[dolbyectl] ", log.LstdFlags|log.Lmicroseconds)

// Logf writes a formatted diagnostic line to the package logger.
func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Fatalf writes a formatted diagnostic line and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// SetOutput redirects the package logger, used by rotate.go to point it at
// a lumberjack-managed file for batch runs.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
