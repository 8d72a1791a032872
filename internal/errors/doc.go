// Package errors provides structured errors for the progression service.
//
// Every error carries a Code so callers can branch on failure kind without
// string matching, a human-readable Message, an optional wrapped Cause, and
// a Meta map for machine-readable detail (budget bounds, missing steps,
// failed prerequisite names).
//
// Validation across multiple fields uses ValidationBuilder, which collects
// per-field messages and collapses to a single InvalidArgument error.
package errors
