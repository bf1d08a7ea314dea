package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/modelcore/internal/config"
	"github.com/toyz/modelcore/internal/routes"
)

type compileFlags struct {
	sources          []string
	destination      string
	imports          []string
	serveMux         bool
	reverse          bool
	namespaceReverse bool
	static           bool
}

func (a *app) routesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Work with routes files",
	}
	cmd.AddCommand(a.routesCompileCommand())
	return cmd
}

func (a *app) routesCompileCommand() *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "compile [routes files...]",
		Short: "Compile routes files into Go route tables",
		Long: `Compile routes files into Go route tables.

Each line of a routes file maps a request to a controller call:

  GET   /users/:id      controllers.Users.Show(id: int64)
  GET   /users          controllers.Users.List(page: int ?= 1)
  GET   /assets/*file   controllers.Assets.At(root = "public", file)

Values from modelcore.yaml are overridden by flags and positional files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			params := cfg.Routes.CompileParams()
			flags.apply(cmd, args, &params)
			return a.compile(cmd, routes.NewCompileSpec(params))
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&flags.sources, "source", "s", nil, "routes file to compile (repeatable)")
	f.StringVarP(&flags.destination, "dest", "d", "", "directory the generated files are written to")
	f.StringSliceVarP(&flags.imports, "import", "i", nil, "additional import, path or alias=path (repeatable)")
	f.BoolVar(&flags.serveMux, "serve-mux", false, "generate a net/http ServeMux helper")
	f.BoolVar(&flags.reverse, "reverse", false, "generate reverse routes")
	f.BoolVar(&flags.namespaceReverse, "namespace-reverse", false, "prefix reverse routers with their package")
	f.BoolVar(&flags.static, "static", false, "route to package functions instead of injected controllers")
	return cmd
}

// apply overrides params with every flag set on the command line
func (f *compileFlags) apply(cmd *cobra.Command, args []string, params *routes.CompileParams) {
	changed := cmd.Flags().Changed
	if changed("source") {
		params.Sources = f.sources
	}
	if len(args) > 0 {
		params.Sources = append(params.Sources[:0:0], args...)
		if changed("source") {
			params.Sources = append(params.Sources, f.sources...)
		}
	}
	if changed("dest") {
		params.DestinationDir = f.destination
	}
	if changed("import") {
		params.AdditionalImports = f.imports
	}
	if changed("serve-mux") {
		params.ServeMuxProject = f.serveMux
	}
	if changed("reverse") {
		params.GenerateReverseRoutes = f.reverse
	}
	if changed("namespace-reverse") {
		params.NamespaceReverseRouter = f.namespaceReverse
	}
	if changed("static") {
		params.StaticRoutesGenerator = f.static
	}
}

func (a *app) compile(cmd *cobra.Command, spec routes.CompileSpec) error {
	diagnostics := a.diagnostics
	diagnostics.Header("compiling routes")
	diagnostics.Verbose("destination: %s", spec.DestinationDir())
	for _, source := range spec.Sources() {
		diagnostics.Verbose("source: %s", source)
	}

	fork := spec.ForkOptions()
	diagnostics.Debug("fork: memory limit %d, max procs %d, %d env entries", fork.MemoryLimit, fork.MaxProcs, len(fork.Env))
	diagnostics.Debug("serve mux %t, reverse routes %t, namespaced %t, static %t",
		spec.IsServeMuxProject(), spec.IsGenerateReverseRoutes(), spec.IsNamespaceReverseRouter(), spec.IsStaticRoutesGenerator())
	restore, err := fork.Apply()
	if err != nil {
		return err
	}
	defer restore()

	result, err := routes.NewCompiler(spec).Compile(cmd.Context())
	if err != nil {
		return err
	}

	diagnostics.Subsection("Generated files")
	diagnostics.Indent()
	for _, file := range result.Files {
		diagnostics.PhaseItem("wrote " + file.Path)
	}
	diagnostics.Unindent()
	diagnostics.Summary("Routes compiled", map[string]any{
		"Sources":         result.Sources,
		"Routes":          result.Routes,
		"Generated files": len(result.Files),
	})
	diagnostics.Success("routes written to %s", spec.DestinationDir())
	return nil
}
