// Package repl implements the interactive shell of lingvo-cli.
//
//   - repl.go: read loop, built-ins and dispatch to an Executor
//   - split.go: shell-style word splitting with quotes
//   - completer.go: prefix lookup over the command tree
//   - history.go: persisted command history
//
// State such as the session and the staged list filters lives in the
// executor, so it survives from one line to the next.
package repl
