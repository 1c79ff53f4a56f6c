// Package workflow coordinates the analysis pipeline. A single manager
// polls the queue, walks each item through the fetch, convert, acoustic,
// transcribe, evaluate and persist stages, and maintains per-item heartbeats
// so crashed runs can be reclaimed.
package workflow
