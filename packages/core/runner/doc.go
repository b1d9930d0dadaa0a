// Package runner executes gqltester fixtures and manages test execution.
//
// It provides functionality for:
//   - Running a single fixture: parse, resolve the expectation, query the
//     server with retries, compare, and optionally rewrite the expectation
//   - Running many suites through a bounded worker pool or sequentially
//   - Cancelling a run with a grace period for in-flight fixtures
//   - Collecting outcomes into a report with derived counts
//
// Every per-fixture failure becomes an Outcome; only run-level problems
// (interrupts, suite timeouts) are returned as errors.
package runner
