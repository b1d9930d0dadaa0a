// Package canonical re-serializes JSON documents into a deterministic text
// form so that semantically equal responses compare equal line by line.
//
// The canonical form decodes string escapes, keeps the last of repeated
// object keys, sorts object keys at every depth, indents with four
// spaces and keeps number literals exactly as they were written. Text that
// is not valid JSON is passed through unchanged.
package canonical
