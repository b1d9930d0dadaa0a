// Package fixture reads gqltester test files.
//
// A fixture is plain text split into two or three sections by the literal
// delimiter "<===>":
//
//	<query>
//	<===>
//	<variables JSON>          (optional)
//	<===>
//	<expectation>
//
// The expectation is either commented JSON or the regression marker "URL".
package fixture
