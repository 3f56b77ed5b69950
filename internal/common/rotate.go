package common

import "gopkg.in/natefinch/lumberjack.v2"

// RotatingLog opens a size-and-age-rotated log file for a batch run and
// points the package logger at it. The teacher imports lumberjack.v2 but
// never wires it to anything; here it backs the log file a multi-file
// batchrun.Pool run writes to.
func RotatingLog(path string, maxSizeMB, maxBackups, maxAgeDays int) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	SetOutput(l)
	return l
}
