// Package routes compiles routes files into Go route tables served by
// pkg/router.
package routes

import (
	"maps"
	"slices"
)

// ForkOptions tune the process the compiler runs in
type ForkOptions struct {
	MemoryLimit int64             // soft memory limit in bytes, 0 keeps the runtime default
	MaxProcs    int               // GOMAXPROCS, 0 keeps the runtime default
	Env         map[string]string // extra environment entries
}

func (o ForkOptions) clone() ForkOptions {
	o.Env = maps.Clone(o.Env)
	return o
}

// CompileParams holds the inputs of NewCompileSpec
type CompileParams struct {
	Sources                []string
	DestinationDir         string
	ForkOptions            ForkOptions
	ServeMuxProject        bool
	NamespaceReverseRouter bool
	GenerateReverseRoutes  bool
	StaticRoutesGenerator  bool
	AdditionalImports      []string
}

// CompileSpec is the immutable configuration of one routes compilation.
// It carries values only; the compiler validates them.
type CompileSpec struct {
	sources                []string
	destinationDir         string
	forkOptions            ForkOptions
	serveMuxProject        bool
	namespaceReverseRouter bool
	generateReverseRoutes  bool
	staticRoutesGenerator  bool
	additionalImports      []string
}

// NewCompileSpec snapshots params
func NewCompileSpec(params CompileParams) CompileSpec {
	return CompileSpec{
		sources:                slices.Clone(params.Sources),
		destinationDir:         params.DestinationDir,
		forkOptions:            params.ForkOptions.clone(),
		serveMuxProject:        params.ServeMuxProject,
		namespaceReverseRouter: params.NamespaceReverseRouter,
		generateReverseRoutes:  params.GenerateReverseRoutes,
		staticRoutesGenerator:  params.StaticRoutesGenerator,
		additionalImports:      slices.Clone(params.AdditionalImports),
	}
}

// Sources returns the routes files to compile
func (s CompileSpec) Sources() []string {
	return slices.Clone(s.sources)
}

// DestinationDir returns the directory generated files are written to
func (s CompileSpec) DestinationDir() string {
	return s.destinationDir
}

// ForkOptions returns the compiler process options
func (s CompileSpec) ForkOptions() ForkOptions {
	return s.forkOptions.clone()
}

// IsServeMuxProject reports whether a net/http ServeMux helper is generated
func (s CompileSpec) IsServeMuxProject() bool {
	return s.serveMuxProject
}

// IsNamespaceReverseRouter reports whether reverse routers are prefixed with
// their controller package
func (s CompileSpec) IsNamespaceReverseRouter() bool {
	return s.namespaceReverseRouter
}

// IsGenerateReverseRoutes reports whether reverse routes are generated
func (s CompileSpec) IsGenerateReverseRoutes() bool {
	return s.generateReverseRoutes
}

// IsStaticRoutesGenerator reports whether routes call package functions
// instead of methods on injected controllers
func (s CompileSpec) IsStaticRoutesGenerator() bool {
	return s.staticRoutesGenerator
}

// AdditionalImports returns the extra import paths made available to
// routes files
func (s CompileSpec) AdditionalImports() []string {
	return slices.Clone(s.additionalImports)
}

// Params returns the spec's values as CompileParams, for deriving a
// modified spec
func (s CompileSpec) Params() CompileParams {
	return CompileParams{
		Sources:                s.Sources(),
		DestinationDir:         s.destinationDir,
		ForkOptions:            s.ForkOptions(),
		ServeMuxProject:        s.serveMuxProject,
		NamespaceReverseRouter: s.namespaceReverseRouter,
		GenerateReverseRoutes:  s.generateReverseRoutes,
		StaticRoutesGenerator:  s.staticRoutesGenerator,
		AdditionalImports:      s.AdditionalImports(),
	}
}
