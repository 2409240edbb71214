package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/config"
	"github.com/yndnr/lingvo-go/internal/cli/repl"
	"github.com/yndnr/lingvo-go/internal/infra/confloader"
)

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive mode; the session and list filters persist between commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (empty string disables)",
				Value: repl.DefaultHistoryFile(),
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the configuration file when it changes",
			},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	if !rt.interactive.CompareAndSwap(false, true) {
		return errors.New("already in the shell")
	}
	defer rt.interactive.Store(false)

	ctx, stop := rt.shutdown.SignalContext(c.Context)
	defer stop()

	if !c.Bool("no-watch") {
		if w := rt.watchConfig(c.String("config")); w != nil {
			defer w.Stop()
		}
	}

	rt.restore(ctx)
	if snap := rt.session.Snapshot(); snap.Authenticated() {
		fmt.Fprintf(rt.out, "Logged in as %s. Type 'help' for commands, 'exit' to leave.\n", snap.Identity.Username)
	} else {
		fmt.Fprintln(rt.out, "Not logged in. Type 'login' to start, 'help' for commands, 'exit' to leave.")
	}

	app := c.App
	r := repl.New(repl.Config{
		Input:  rt.in,
		Output: rt.out,
		Prompt: func() string {
			if snap := rt.session.Snapshot(); snap.Authenticated() {
				return snap.Identity.Username + "@lingvo> "
			}
			return "lingvo> "
		},
		Execute: func(ctx context.Context, args []string) error {
			if args[0] != "help" && app.Command(args[0]) == nil {
				return fmt.Errorf("%w: %s", repl.ErrUnknownCommand, args[0])
			}
			if args[0] == "shell" {
				return errors.New("already in the shell")
			}
			// Failures are reported here so the shell shows the same
			// messages as one-shot commands.
			if err := app.RunContext(ctx, append([]string{app.Name}, args...)); err != nil {
				PrintError(rt.out, err)
			}
			return nil
		},
		Completer: repl.NewCompleter(commandPaths(app.Commands, "")...),
		History:   repl.NewHistory(c.String("history"), repl.DefaultHistorySize),
		Logger:    rt.log,
	})
	return r.Run(ctx)
}

// watchConfig reloads hot settings when the configuration file changes.
func (rt *Runtime) watchConfig(flagPath string) *confloader.Watcher {
	path := rt.effectiveConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.log))
	if err != nil {
		rt.log.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil
	}
	w.OnChange(func(string) {
		cfg, err := config.Load(flagPath, nil)
		if err != nil {
			rt.log.Warn("ignoring invalid configuration change", "path", path, "error", err)
			return
		}
		rt.Reload(cfg)
	})
	w.StartAsync()
	return w
}

// commandPaths flattens the command tree into "parent child" paths.
func commandPaths(cmds []*cli.Command, prefix string) []string {
	var out []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		path := prefix + cmd.Name
		out = append(out, path)
		out = append(out, commandPaths(cmd.Subcommands, path+" ")...)
	}
	return out
}
