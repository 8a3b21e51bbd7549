// Package ui provides helpers for human-readable console output.
//
// Console renders the interactive dialogue of a workflow run (stage headers,
// proposed commands, check results) while CommandEventLogger mirrors
// subprocess lifecycle events into the diagnostic zap logger.
package ui
