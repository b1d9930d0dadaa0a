// Package output provides formatters for displaying test results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - TAP: Test Anything Protocol format
//
// Formatters receive outcomes as they are collected, so results stream
// while later fixtures are still running.
package output
