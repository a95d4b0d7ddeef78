// Package watcher consumes submission files dropped into an inbox directory.
//
// Each file becomes one submission: picked up after a short quiet period (so
// half-written files are not read mid-stream), run through the pipeline, then
// moved to processed/ or failed/ under the inbox. Files already present when
// the watcher starts are swept first; a crash between drop and pickup loses
// nothing. Moves are keyed to the run id, so a processed artifact can always
// be traced back to its Decision Record.
package watcher
