// Package api exposes the HTTP surface of the analysis daemon. Callers
// enqueue recordings for analysis and poll queue state; the workflow manager
// does the actual processing in the background.
package api
