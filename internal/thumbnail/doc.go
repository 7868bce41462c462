// Package thumbnail extracts preview frames and durations from uploaded
// videos using ffmpeg and ffprobe.
//
// Generate never fails from the caller's point of view: a missing binary, a
// decode error or the timeout all produce "no thumbnail". Results are
// cached on disk by entry id and concurrent requests for the same id share
// one extraction.
package thumbnail
