package command

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/config"
	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/infra/buildinfo"
)

const metadataRuntime = "runtime"

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:                 "lingvo-cli",
		Usage:                "Order translations and browse your history from the terminal",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			OrderCommand(),
			PaymentCommand(),
			TranslationsCommand(),
			StatsCommand(),
			ShellCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		Before:   before,
		After:    after,
		// Errors are printed by the caller (main or the shell), never here.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	return app
}

// globalFlags returns the global CLI flags. Only flags the user sets
// override configuration values.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.lingvo/cli.yaml)",
			EnvVars: []string{"LINGVO_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "base-url",
			Aliases: []string{"u"},
			Usage:   "Translation service address",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
		&cli.StringFlag{
			Name:  "store-dir",
			Usage: "Credential store directory",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Shorthand for --log-level debug",
		},
	}
}

// flagOverrides maps explicitly set global flags onto configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	if c.IsSet("base-url") {
		out["api.base_url"] = c.String("base-url")
	}
	if c.IsSet("output") {
		out["output.format"] = c.String("output")
	}
	if c.IsSet("timeout") {
		out["api.timeout"] = c.Duration("timeout").String()
	}
	if c.IsSet("store-dir") {
		out["session.store_dir"] = c.String("store-dir")
	}
	if c.IsSet("log-level") {
		out["log.level"] = c.String("log-level")
	}
	if c.Bool("verbose") {
		out["log.level"] = "debug"
	}
	return out
}

func before(c *cli.Context) error {
	if runtimeFrom(c) != nil {
		return nil
	}
	overrides := flagOverrides(c)
	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return err
	}
	rt, err := NewRuntime(cfg, RuntimeOptions{
		ConfigPath: c.String("config"),
		Overrides:  overrides,
		Out:        c.App.Writer,
		Err:        c.App.ErrWriter,
		In:         c.App.Reader,
	})
	if err != nil {
		return err
	}
	c.App.Metadata[metadataRuntime] = rt
	return nil
}

func after(c *cli.Context) error {
	rt := runtimeFrom(c)
	if rt == nil || rt.Interactive() {
		return nil
	}
	delete(c.App.Metadata, metadataRuntime)
	return rt.Close()
}

func runtimeFrom(c *cli.Context) *Runtime {
	if c == nil || c.App == nil {
		return nil
	}
	rt, _ := c.App.Metadata[metadataRuntime].(*Runtime)
	return rt
}

// mustRuntime returns the Runtime built by the Before hook.
func mustRuntime(c *cli.Context) (*Runtime, error) {
	rt := runtimeFrom(c)
	if rt == nil {
		return nil, fmt.Errorf("lingvo-cli: runtime not initialized")
	}
	return rt, nil
}

// PrintError writes err the way a user should see it. Server field
// errors beyond the headline message are listed one per line.
func PrintError(w io.Writer, err error) {
	var ce *domain.ClientError
	if !errors.As(err, &ce) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	headline := ce.DisplayMessage()
	if ce.Kind == domain.KindTransport && ce.Cause != nil {
		fmt.Fprintf(w, "error: %s (%v)\n", headline, ce.Cause)
	} else {
		fmt.Fprintf(w, "error: %s\n", headline)
	}

	fields := make([]string, 0, len(ce.Fields))
	for name := range ce.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		for _, msg := range ce.Fields[name] {
			if strings.HasSuffix(headline, msg) {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", name, msg)
		}
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case domain.IsKind(err, domain.KindValidation):
		return 2
	case domain.IsKind(err, domain.KindAuthorization):
		return 3
	case domain.IsKind(err, domain.KindTransport):
		return 4
	default:
		return 1
	}
}
