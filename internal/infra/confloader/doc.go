// Package confloader loads layered configuration with koanf.
//
// Sources are merged in order, later sources overriding earlier ones:
//
//  1. Default values supplied by the caller
//  2. The YAML configuration file, when present
//  3. Environment variables carrying the LINGVO_ prefix
//  4. Command-line flags passed as a map
//
// A Watcher reports edits to the configuration file so long-running
// commands can pick up changes without restarting.
package confloader
