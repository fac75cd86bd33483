// Package render turns cues, a style configuration, and video metadata into
// an ffmpeg filter graph and executes it to burn subtitles into a new video.
//
// Two mutually exclusive strategies exist: drawtext (one filter invocation
// per cue, preferred) and the ass filter (overlay of a pre-generated script,
// used when the build lacks drawtext). Filter availability is probed once
// per process and memoized.
package render
