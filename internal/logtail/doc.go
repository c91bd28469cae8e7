// Package logtail reads the end of the imageposter log file for the TUI log
// pane.
//
// Read looks at no more than the last 256KB of the file, so it costs the same
// for a fresh log and a month-old one. Level pulls the level out of a line
// written by slog's text handler so the UI can color it.
package logtail
