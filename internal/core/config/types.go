// Package config manages the workspace's tracked default-policy file,
// `.wald/config.yaml`, applied when a repo is registered without explicit
// flags.
package config

// Config is the tracked `.wald/config.yaml` schema.
type Config struct {
	DefaultLFS   string `yaml:"default_lfs"`
	DefaultDepth string `yaml:"default_depth"`
}

// Default returns the out-of-the-box policy applied by `wald init`.
func Default() *Config {
	return &Config{
		DefaultLFS:   "minimal",
		DefaultDepth: "100",
	}
}
