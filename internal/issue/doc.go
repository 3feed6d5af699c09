// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing diagnostics for well-known failure
// modes. Each Issue carries a Markdown help text rendered with glamour,
// so the terminal output explains what went wrong and what to try next.
//
// The package also provides ActionableError, a structured error type
// that pairs an operation and resource with fix suggestions.
package issue
