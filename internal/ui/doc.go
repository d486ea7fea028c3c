// Package ui provides terminal UI components for the fritzpowerline CLI.
//
// This package uses Lipgloss to render styled output and Bubble Tea for the
// spinner shown while the router is queried. Components follow a "run once
// and exit" pattern: they render output but don't require user interaction,
// except for the confirmation prompt guarding firmware updates.
//
// # Components
//
//   - Header: banner showing the router model and connection parameters
//   - Table: bordered device table (lipgloss/table)
//   - Result: success/failure/warning boxes with troubleshooting tips
//   - Confirmer: typed confirmation for dangerous operations
//   - RunWithSpinner: spinner on stderr while a blocking call runs
//
// # Logging Integration
//
// This package expects logging to be controlled via the
// FRITZPOWERLINE_LOG_LEVEL environment variable. When unset or empty, zap
// logging is silent, allowing the curated UI output to be displayed cleanly.
package ui
