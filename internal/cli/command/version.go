package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			rt, err := mustRuntime(c)
			if err != nil {
				return err
			}
			info := buildinfo.Get()
			return rt.render(tableValue{
				table: output.KeyValue(
					"version", info.Version,
					"commit", info.Commit,
					"built", info.BuildTime,
					"go", info.GoVersion,
				),
				value: info,
			})
		},
	}
}
