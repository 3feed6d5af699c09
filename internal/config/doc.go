// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates rundown's own configuration (not
// recipe files): the default runtime, shell override, and UI settings.
//
// Configuration values come from, in increasing priority: built-in
// defaults, a config.cue file in the platform config directory (or the
// current directory), RUNDOWN_* environment variables, and the explicit
// --config flag path.
package config
