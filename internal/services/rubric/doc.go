// Package rubric scores interview transcripts against per-question rubric
// categories using an OpenAI-compatible chat completion API.
package rubric
