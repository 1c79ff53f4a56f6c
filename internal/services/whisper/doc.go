// Package whisper wraps the Whisper CLI to transcribe converted interview
// audio into Korean text for the rubric evaluator.
package whisper
