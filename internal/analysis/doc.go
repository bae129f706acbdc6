// Package analysis sequences the pipeline stages for one run.
//
// A run loads the configured CSV, cleans it, builds the report aggregates,
// prepares the modelling matrices, fits and scores the regressor, optionally
// renders charts, and records the outcome in the run history. Every stage is
// logged with its duration under a shared run id, and failures are wrapped
// with the stage markers from package stage so the CLI and the history can
// classify them.
package analysis
