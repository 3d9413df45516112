// Package logging provides structured logging for qanotes runs.
//
// It wraps log/slog with a JSON handler. Logs go to stderr unless a log
// directory is configured, in which case they are appended to
// {dir}/qanotes.log and rotated by size.
//
// # Thread Safety
//
// [Logger] and [RotatingWriter] are safe for concurrent use. Child loggers
// created with With* share the parent's writer.
//
// # Usage
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	dbLog := logger.WithDatabase("releases.json")
//	dbLog.Info("rendered", "releases", 5)
//
// Render code logs per release:
//
//	relLog := dbLog.WithRelease("2.1.0")
//	relLog.Debug("rendering release", "notes", 12)
//
// Use [NopLogger] where logging is disabled or in tests.
package logging
