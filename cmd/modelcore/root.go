package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/toyz/modelcore/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app holds the state shared by every command
type app struct {
	configFile  string
	verbose     int
	quiet       bool
	diagnostics *utils.DiagnosticSystem
}

func newApp() *app {
	return &app{diagnostics: utils.NewDiagnosticSystem(utils.DiagnosticInfo)}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "modelcore",
		Short:         "Property schema tooling and routes compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.diagnostics = a.newDiagnostics(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "configuration file (default modelcore.yaml)")
	flags.CountVarP(&a.verbose, "verbose", "v", "enable verbose output (-vv for debug output)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only show errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(a.routesCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func (a *app) newDiagnostics(out, errOut io.Writer) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case a.quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case a.verbose > 1:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	case a.verbose == 1:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(out, errOut)
	return diagnostics
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			v := version
			if info, ok := debug.ReadBuildInfo(); ok && v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "modelcore %s (%s)\n", v, runtime.Version())
		},
	}
}
