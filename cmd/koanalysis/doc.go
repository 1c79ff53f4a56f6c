// Package main hosts the koanalysis CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into queue
// maintenance operations, standalone acoustic scoring runs, daemon health
// probes over HTTP, and configuration scaffolding. It centralizes
// configuration resolution so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
