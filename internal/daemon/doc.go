// Package daemon owns the long-running analysis process: it holds the
// instance lock, supervises the workflow manager and serves the HTTP API.
package daemon
