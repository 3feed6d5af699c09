// SPDX-License-Identifier: MPL-2.0

// Package rundownfile defines the schema and parsing for rundown.cue recipe
// files.
//
// A rundown file declares three things: global bindings (literal values or
// command substitutions), environment variables exported to every recipe,
// and named recipes with positional parameters and an ordered list of
// command-line steps. Files are validated against an embedded CUE schema
// and then structurally checked (unique names, parameter ordering).
package rundownfile
