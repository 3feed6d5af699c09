// SPDX-License-Identifier: MPL-2.0

// Package shell provides the command execution runtimes and environment
// plumbing for recipe steps and binding helpers.
//
// Two runtimes are available: native (the system shell via os/exec) and
// virtual (an embedded POSIX shell backed by mvdan.cc/sh, available on
// every platform without external dependencies). Both runtimes receive a
// fully built environment snapshot; neither mutates the caller's process
// environment.
package shell
