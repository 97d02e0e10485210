package graft

import _ "embed"

// Version is the library release string, sourced from version.txt so the
// build and release tooling share a single file. It may carry a trailing
// newline; trim before display.
//
//go:embed version.txt
var Version string
