// SPDX-License-Identifier: MPL-2.0

package config

import "sync"

var (
	mu sync.Mutex

	cached     *Config
	cachedPath string

	// configFilePathOverride is set by the --config flag.
	configFilePathOverride string
	// configDirOverride is used by tests to redirect the config directory.
	configDirOverride string
)

// Get returns the cached configuration, loading it on first use.
func Get() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	cfg, path, err := Load()
	if err != nil {
		return nil, err
	}

	cached = cfg
	cachedPath = path
	return cached, nil
}

// Path returns the resolved config file path of the cached configuration,
// or "" when running on defaults. Get must have been called first.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return cachedPath
}

// SetConfigFilePathOverride points Load at an explicit config file.
// It invalidates any cached configuration.
func SetConfigFilePathOverride(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePathOverride = path
	cached = nil
	cachedPath = ""
}

// SetConfigDirOverride redirects ConfigDir, primarily for tests.
func SetConfigDirOverride(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = dir
	cached = nil
	cachedPath = ""
}

// Reset clears the cached configuration and all overrides.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = nil
	cachedPath = ""
	configFilePathOverride = ""
	configDirOverride = ""
}
