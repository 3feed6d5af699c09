// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for parsing CUE files against
// embedded schemas: the compile-unify-decode flow, size limits, and
// user-facing error formatting with JSON-path locations.
package cueutil
