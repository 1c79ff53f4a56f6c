// Package ffmpeg converts uploaded interview recordings into the mono WAV
// form the acoustic scorer and transcriber consume.
package ffmpeg
