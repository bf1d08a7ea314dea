// Package config loads the modelcore CLI configuration
package config

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/internal/routes"
	"github.com/toyz/modelcore/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. MODELCORE_ROUTES_DESTINATION
const EnvPrefix = "MODELCORE"

// Config is the content of modelcore.yaml
type Config struct {
	Routes RoutesConfig `mapstructure:"routes"`
}

// RoutesConfig configures routes compilation
type RoutesConfig struct {
	Sources                []string   `mapstructure:"sources"`
	Destination            string     `mapstructure:"destination"`
	ServeMux               bool       `mapstructure:"serve_mux"`
	ReverseRoutes          bool       `mapstructure:"reverse_routes"`
	NamespaceReverseRouter bool       `mapstructure:"namespace_reverse_router"`
	Static                 bool       `mapstructure:"static"`
	Imports                []string   `mapstructure:"imports"`
	Fork                   ForkConfig `mapstructure:"fork"`
}

// ForkConfig tunes the compiler process. Env entries are KEY=VALUE so that
// variable names keep their case.
type ForkConfig struct {
	MemoryLimit int64    `mapstructure:"memory_limit"`
	MaxProcs    int      `mapstructure:"max_procs"`
	Env         []string `mapstructure:"env"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("routes.sources", []string{"conf/routes"})
	v.SetDefault("routes.destination", "routes")
	v.SetDefault("routes.serve_mux", false)
	v.SetDefault("routes.reverse_routes", false)
	v.SetDefault("routes.namespace_reverse_router", false)
	v.SetDefault("routes.static", false)
	v.SetDefault("routes.imports", []string{})
	v.SetDefault("routes.fork.memory_limit", 0)
	v.SetDefault("routes.fork.max_procs", 0)
	v.SetDefault("routes.fork.env", []string{})
}

// Load reads path, or modelcore.yaml in the working directory when path is
// empty. A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("modelcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(configName(path), "read", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError(configName(path), "decode", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configName(path string) string {
	if path == "" {
		return "modelcore.yaml"
	}
	return path
}

func (c *Config) validate() error {
	var errs *errors.MultipleErrors
	if err := utils.ValidateEach("routes.sources", utils.NotEmpty("source"))(c.Routes.Sources); err != nil {
		errors.AddToMultiple(&errs, errors.WrapConfigurationError("routes.sources", "validate", err))
	}
	fork := c.Routes.Fork
	if fork.MemoryLimit < 0 {
		errors.AddToMultiple(&errs, errors.ConfigurationError("routes.fork.memory_limit", "must not be negative"))
	}
	if fork.MaxProcs < 0 {
		errors.AddToMultiple(&errs, errors.ConfigurationError("routes.fork.max_procs", "must not be negative"))
	}
	for _, entry := range fork.Env {
		if key, _, ok := strings.Cut(entry, "="); !ok || key == "" {
			errors.AddToMultiple(&errs, errors.ConfigurationError("routes.fork.env", "entry "+entry+" is not KEY=VALUE"))
		}
	}
	return errs.ErrorOrNil()
}

// ForkOptions converts the fork block
func (f ForkConfig) ForkOptions() routes.ForkOptions {
	opts := routes.ForkOptions{MemoryLimit: f.MemoryLimit, MaxProcs: f.MaxProcs}
	if len(f.Env) > 0 {
		opts.Env = make(map[string]string, len(f.Env))
		for _, entry := range f.Env {
			key, value, _ := strings.Cut(entry, "=")
			opts.Env[key] = value
		}
	}
	return opts
}

// CompileSpec converts the routes block
func (r RoutesConfig) CompileSpec() routes.CompileSpec {
	return routes.NewCompileSpec(r.CompileParams())
}

// CompileParams converts the routes block into editable parameters, for
// callers that override values before building the spec
func (r RoutesConfig) CompileParams() routes.CompileParams {
	return routes.CompileParams{
		Sources:                r.Sources,
		DestinationDir:         r.Destination,
		ForkOptions:            r.Fork.ForkOptions(),
		ServeMuxProject:        r.ServeMux,
		NamespaceReverseRouter: r.NamespaceReverseRouter,
		GenerateReverseRoutes:  r.ReverseRoutes,
		StaticRoutesGenerator:  r.Static,
		AdditionalImports:      r.Imports,
	}
}
