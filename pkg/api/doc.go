// Package api defines the public data model and contracts of the refino
// engine: artifacts, verdicts, stage and pipeline specifications, the
// Generator/Checker call boundaries, retry policies, observers, and the
// long-term memory and event store interfaces.
//
// Most applications import the root refino package, which re-exports the
// types defined here together with engine constructors and builders.
package api
