// Package stage defines the shared plumbing consumed by every pipeline step.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier and current stage name so
//     log lines and errors can be correlated.
//   - Structured error markers plus the Wrap helper that classify failures
//     (load, validation, configuration, empty dataset) for reporting and for
//     the run history.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package stage
