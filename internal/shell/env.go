// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
)

// EnvOptions configures one environment snapshot build.
type EnvOptions struct {
	// Environ returns the host environment as "KEY=VALUE" strings.
	// When nil, os.Environ() is used.
	Environ func() []string
	// Files are dotenv files from the rundown file, resolved against BasePath.
	Files []string
	// BasePath is the rundown file directory.
	BasePath string
	// Exports are the file-level exported variables (binding references
	// already expanded).
	Exports map[string]string
	// RuntimeEnvFiles are dotenv files from --env-file flags, resolved
	// against Cwd.
	RuntimeEnvFiles []string
	// RuntimeEnvVars are KEY=VALUE pairs from --env-var flags.
	RuntimeEnvVars map[string]string
	// Cwd is the invocation working directory ("" = os.Getwd).
	Cwd string
}

// BuildEnv constructs a per-invocation environment snapshot with the
// following precedence (higher number wins):
//
//  1. Host environment
//  2. Rundown file env.files (loaded in order)
//  3. Rundown file env.vars (the exported variables)
//  4. --env-file flag files (loaded in flag order)
//  5. --env-var flag values - HIGHEST priority
//
// The snapshot is independent per call: the process environment is read,
// never written.
func BuildEnv(opts EnvOptions) (map[string]string, error) {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	for _, kv := range environ() {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		env[key] = value
	}

	// 2. Rundown file env.files
	for _, path := range opts.Files {
		if err := LoadEnvFile(env, path, opts.BasePath); err != nil {
			return nil, err
		}
	}

	// 3. Exported vars
	maps.Copy(env, opts.Exports)

	// 4. --env-file flag files
	cwd := opts.Cwd
	for _, path := range opts.RuntimeEnvFiles {
		if cwd == "" && !filepath.IsAbs(strings.TrimSuffix(path, "?")) {
			var err error
			cwd, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current working directory: %w", err)
			}
		}
		if err := LoadEnvFile(env, path, cwd); err != nil {
			return nil, err
		}
	}

	// 5. --env-var flag values (highest priority)
	maps.Copy(env, opts.RuntimeEnvVars)

	return env, nil
}
