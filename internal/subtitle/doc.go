// Package subtitle implements the cue model and the plain-text subtitle
// codecs (WebVTT, SRT, ASS) used by the processing pipeline.
//
// The VTT parser is intentionally tolerant: malformed timestamps degrade to
// zero instead of failing so a format deviation never aborts a render.
package subtitle
