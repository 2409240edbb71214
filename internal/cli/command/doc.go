// Package command defines the lingvo-cli command tree on urfave/cli/v2.
//
// Every invocation builds one Runtime in the app's Before hook: the
// merged configuration, the logger, the metrics registry, the credential
// store, the API client and the session manager. The interactive shell
// reuses that Runtime for every line it runs, so the session and the
// staged list filters carry over between commands.
package command
