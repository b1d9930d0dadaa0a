// Package http sends GraphQL queries to the server under test.
//
// It wraps the standard library's http package with:
//   - Form-encoded POST of the query and its variables
//   - A per-attempt timeout and an X-Request-ID header
//   - Canonicalization of JSON response bodies
//   - A bounded retry loop for the primary server
//   - Optional rate limiting shared by all workers
package http
