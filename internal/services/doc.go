// Package services provides the shared error taxonomy and context carriage
// used by the workflow stages and their external collaborators (S3, ffmpeg,
// Whisper, the rubric LLM, and the result databases).
//
// Errors are tagged with sentinel markers so the workflow manager can map a
// stage failure to the right terminal queue status: validation and
// configuration problems route items to review, everything else to failed.
package services
