// Package cmd implements the gqltester CLI commands using Cobra.
//
// Available commands:
//   - run: Execute fixtures against a GraphQL server
//   - validate: Check fixtures without contacting a server
//   - list: Display suites and the fixtures they contain
//   - init: Create a tests directory with an example fixture
//   - mock: Serve fixture expectations as a fake GraphQL server
//   - version: Show gqltester version information
//
// Flags can also be set through GQLTESTER_* environment variables and a
// .gqltester.yml file; flags win over the environment, which wins over
// the file.
package cmd
