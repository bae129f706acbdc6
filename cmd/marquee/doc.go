// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, builds the
// structured logger, and hands each invocation to the analysis package:
// full runs with model scoring, describe-only reports, cleaned CSV export,
// run history listings, and configuration scaffolding.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
