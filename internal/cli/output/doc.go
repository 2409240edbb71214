// Package output renders lingvo-cli results.
//
//   - formatter.go: Format names and the Formatter factory
//   - table.go: aligned plain-text tables for people
//   - json.go, yaml.go: machine-readable output for scripts
//   - spinner.go: a stderr animation while waiting on the server
package output
