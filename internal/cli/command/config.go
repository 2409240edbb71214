package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/config"
	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or create the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration (secrets masked)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "keys", Usage: "List the merged keys one per line with the file they came from"},
				},
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with the current values",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	if c.Bool("keys") {
		return configKeys(rt)
	}
	data, err := config.Marshal(rt.Config().Redacted())
	if err != nil {
		return err
	}
	_, err = rt.out.Write(data)
	return err
}

// configKeys lists the merged configuration keys. Values of sensitive
// keys are masked.
func configKeys(rt *Runtime) error {
	_, src, err := config.Inspect(rt.configPath, rt.overrides)
	if err != nil {
		return err
	}

	values := make(map[string]string, len(src.Values))
	t := &output.Table{Headers: []string{"KEY", "VALUE"}}
	for _, key := range src.Keys() {
		v := fmt.Sprint(src.Values[key])
		if logger.IsSensitiveKey(key) && v != "" {
			v = logger.RedactedValue
		}
		values[key] = v
		t.AddRow(key, v)
	}
	if src.FileLoaded {
		t.Footer = []string{"file: " + src.Path}
	} else {
		t.Footer = []string{"file: " + src.Path + " (not found, defaults and environment only)"}
	}
	return rt.render(tableValue{table: t, value: values})
}

func (rt *Runtime) effectiveConfigPath() string {
	if rt.configPath != "" {
		return config.ExpandHome(rt.configPath)
	}
	return config.DefaultConfigPath()
}

func configPath(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	rt.printf("%s\n", rt.effectiveConfigPath())
	return nil
}

func configInit(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	path := rt.effectiveConfigPath()
	// The passphrase stays in the environment, never in the file.
	cfg := *rt.Config()
	cfg.Session.Passphrase = ""
	if err := config.Save(&cfg, path, c.Bool("force")); err != nil {
		return err
	}
	rt.printf("Wrote %s\n", path)
	return nil
}
