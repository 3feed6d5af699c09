// SPDX-License-Identifier: MPL-2.0

// Package serve exposes recipes over SSH using the Wish library.
// Clients authenticate with a single-use token passed as the SSH
// password and invoke exactly one recipe per session; arbitrary shell
// access is never granted.
package serve
