// Package config holds lingvo-cli configuration.
//
//   - spec.go: Config struct and defaults (~/.lingvo/cli.yaml)
//   - loader.go: layered loading through confloader and YAML export
//
// Priority is flag > LINGVO_* environment > file > default.
package config
