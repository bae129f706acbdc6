// Package logging assembles the slog loggers marquee writes through.
//
// The CLI logs human-readable lines (or JSON) to stderr and tees a JSON copy
// into the log directory. Context helpers tag lines with the run id and
// pipeline stage so a single run can be followed through load, clean,
// feature preparation, training and reporting. CleanupOldLogs prunes stale
// log files and charts according to logging.retention_days.
package logging
