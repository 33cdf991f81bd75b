// Package display renders captured bus traffic as trace lines.
//
// Each command frame becomes one line with a relative timestamp, the
// delta to the previous frame, the raw frame bits, and the decoded
// command label. Bus errors render on the same columns in red. An
// optional leading column shows host wall-clock time.
//
// Color is applied with lipgloss and disabled automatically when
// stdout is not a terminal, or explicitly via Options.
package display
