package routes

import (
	"context"
	stderrors "errors"
	"fmt"
	"go/token"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/internal/utils"
	"github.com/toyz/modelcore/pkg/router"
)

const (
	routesFileName  = "routes.go"
	reverseFileName = "reverse_routes.go"
	defaultPackage  = "routes"
)

// paramTypes maps the type names accepted in routes files to Go types
var paramTypes = map[string]string{
	"string":    "string",
	"String":    "string",
	"bool":      "bool",
	"boolean":   "bool",
	"Boolean":   "bool",
	"int":       "int",
	"Int":       "int",
	"int32":     "int32",
	"int64":     "int64",
	"long":      "int64",
	"Long":      "int64",
	"uint":      "uint",
	"uint64":    "uint64",
	"float32":   "float32",
	"float64":   "float64",
	"float":     "float64",
	"double":    "float64",
	"Double":    "float64",
	"UUID":      "uuid.UUID",
	"uuid.UUID": "uuid.UUID",
}

// GeneratedFile is one formatted Go file produced by the compiler
type GeneratedFile struct {
	Path    string
	Content []byte
}

// Result summarizes a compilation
type Result struct {
	Sources int
	Routes  int
	Files   []GeneratedFile
}

// Compiler turns routes files into Go route tables
type Compiler struct {
	spec   CompileSpec
	reader *utils.FileReader
	gomod  *utils.GoModParser
}

// NewCompiler creates a compiler for spec
func NewCompiler(spec CompileSpec) *Compiler {
	reader := utils.NewFileReader()
	return &Compiler{
		spec:   spec,
		reader: reader,
		gomod:  utils.NewGoModParser(reader),
	}
}

// Spec returns the compiler's configuration
func (c *Compiler) Spec() CompileSpec {
	return c.spec
}

// Compile parses every source, generates the route files and writes them
// to the destination directory. Nothing is written unless every source
// compiles.
func (c *Compiler) Compile(ctx context.Context) (*Result, error) {
	if err := c.checkSpec(); err != nil {
		return nil, err
	}

	var files []*File
	routes := 0
	for _, source := range c.spec.Sources() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := c.reader.ReadFile(source)
		if err != nil {
			return nil, err
		}
		file, err := Parse(source, content)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
		routes += len(file.Routes)
	}

	generated, err := c.Generate(files)
	if err != nil {
		return nil, err
	}
	for _, g := range generated {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := utils.WriteGoFile(g.Path, g.Content); err != nil {
			return nil, err
		}
	}

	return &Result{Sources: len(files), Routes: routes, Files: generated}, nil
}

func (c *Compiler) checkSpec() error {
	var errs *errors.MultipleErrors
	if len(c.spec.Sources()) == 0 {
		errors.AddToMultiple(&errs, errors.ConfigurationError("routes", "no routes files to compile"))
	}
	if err := utils.NotEmpty("destination")(c.spec.DestinationDir()); err != nil {
		errors.AddToMultiple(&errs, errors.ConfigurationError("routes", "destination directory is required"))
	}
	return errs.ErrorOrNil()
}

// Generate renders the Go files for already parsed routes files without
// writing them. Every validation failure is reported, not just the first.
func (c *Compiler) Generate(files []*File) ([]GeneratedFile, error) {
	imports, err := c.additionalImports(files)
	if err != nil {
		return nil, err
	}

	p := newPlan(c.spec, imports)
	for _, file := range files {
		for _, route := range file.Routes {
			p.add(route)
		}
	}
	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	p.assignFields()

	sources := make([]string, len(files))
	for i, file := range files {
		sources[i] = filepath.ToSlash(file.Name)
	}
	dest := c.spec.DestinationDir()
	pkg := packageName(dest)

	routesFile, err := render("routes", filepath.Join(dest, routesFileName), p.routesData(pkg, sources))
	if err != nil {
		return nil, err
	}
	out := []GeneratedFile{routesFile}

	if c.spec.IsGenerateReverseRoutes() {
		reverseFile, err := render("reverse", filepath.Join(dest, reverseFileName), p.reverseData(pkg, sources))
		if err != nil {
			return nil, err
		}
		out = append(out, reverseFile)
	}
	return out, nil
}

func render(name, target string, data any) (GeneratedFile, error) {
	src, err := executeTemplate(name, data)
	if err != nil {
		return GeneratedFile{}, generationFailure(err, target, "render "+name)
	}
	formatted, err := utils.FormatGoCode(target, src)
	if err != nil {
		return GeneratedFile{}, generationFailure(err, target, "format")
	}
	return GeneratedFile{Path: target, Content: formatted}, nil
}

// generationFailure tags err with the file being generated and the failing stage
func generationFailure(err error, target, stage string) error {
	var gen *errors.GenerationError
	if stderrors.As(err, &gen) {
		gen.WithTargetFile(target).WithStage(stage)
	}
	return err
}

// additionalImports resolves the configured imports. Relative imports are
// resolved against the module holding the first routes file.
func (c *Compiler) additionalImports(files []*File) (*importSet, error) {
	var module *utils.Module
	resolve := func(rel string) (string, error) {
		if module == nil {
			start := "."
			if len(files) > 0 {
				start = filepath.Dir(files[0].Name)
			}
			m, err := c.gomod.LocateModule(start)
			if err != nil {
				return "", err
			}
			module = &m
		}
		return module.ImportPath(rel)
	}

	set := newImportSet()
	var errs *errors.MultipleErrors
	for _, raw := range c.spec.AdditionalImports() {
		spec, err := parseAdditionalImport(raw, resolve)
		if err == nil {
			err = set.add(spec.Alias, spec.Path)
		}
		if err != nil {
			collect(&errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return set, nil
}

func collect(errs **errors.MultipleErrors, err error) {
	var core errors.CoreError
	if !stderrors.As(err, &core) {
		core = errors.Wrap(errors.GenerationErrorCode, "route generation failed", err)
	}
	errors.AddToMultiple(errs, core)
}

type controllerData struct {
	Alias string
	Type  string
	Field string
}

type bindingData struct {
	Var  string
	Expr string
}

type routeData struct {
	Method     string
	Path       string
	Action     string
	Modifiers  []string
	Bindings   []bindingData
	Args       []string
	Call       string
	controller int // index into plan.controllers, -1 for package functions
	function   string
}

type routesData struct {
	Package          string
	Sources          []string
	Imports          []importSpec
	Static           bool
	ServeMux         bool
	Controllers      []controllerData
	Routes           []routeData
	ControllersParam string
	ControllersArg   string
}

type reverseArg struct {
	Key     string
	Var     string
	Type    string
	Default string // Go literal, empty when the value is always sent
}

type reverseCall struct {
	Name   string
	Method string
	Path   string
	Action string
	Args   []reverseArg
}

type groupData struct {
	TypeName string
	VarName  string
	Describe string
	Calls    []reverseCall
	actions  map[string]string // call name -> action
}

type reverseData struct {
	Package string
	Sources []string
	Imports []importSpec
	Groups  []*groupData
}

// plan accumulates validated routes for the templates
type plan struct {
	spec        CompileSpec
	imports     *importSet
	controllers []controllerData
	byTarget    map[string]int
	routes      []routeData
	seen        map[string]errors.SourceLocation
	groups      []*groupData
	byGroup     map[string]*groupData
	errs        *errors.MultipleErrors
}

func newPlan(spec CompileSpec, imports *importSet) *plan {
	return &plan{
		spec:     spec,
		imports:  imports,
		byTarget: make(map[string]int),
		seen:     make(map[string]errors.SourceLocation),
		byGroup:  make(map[string]*groupData),
	}
}

func (p *plan) fail(route Route, field string, value any, constraint string) *errors.ValidationError {
	err := errors.NewValidationErrorWithValue(field, value, constraint).
		WithLocation(route.Location).
		WithContext("action", route.Action())
	errors.AddToMultiple(&p.errs, err)
	return err
}

func (p *plan) add(route Route) {
	before := p.errs.Count()

	if err := utils.ValidateHTTPMethod("method")(route.Method); err != nil {
		p.fail(route, "method", route.Method, "unsupported HTTP method "+route.Method)
	}
	if err := route.Path.Validate(); err != nil {
		p.fail(route, "path", route.Path.Raw(), err.Error())
	}
	key := route.Method + " " + route.Path.Raw()
	if first, dup := p.seen[key]; dup {
		p.fail(route, "path", route.Path.Raw(), "duplicate route "+key+", first declared at "+first.String())
	} else {
		p.seen[key] = route.Location
	}

	data := routeData{
		Method:     route.Method,
		Path:       route.Path.Raw(),
		Action:     route.Action(),
		Modifiers:  route.Modifiers,
		controller: -1,
	}
	p.bindTarget(route, &data)
	reverse := p.bindParams(route, &data)

	if p.errs.Count() > before {
		return
	}
	p.routes = append(p.routes, data)
	if p.spec.IsGenerateReverseRoutes() {
		p.addReverse(route, reverse)
	}
}

func (p *plan) bindTarget(route Route, data *routeData) {
	want, shape := 3, "package.Controller.Method"
	if p.spec.IsStaticRoutesGenerator() {
		want, shape = 2, "package.Function"
	}
	if len(route.Target) != want {
		err := p.fail(route, "target", route.Action(), "target must have the form "+shape)
		if len(route.Target) == 5-want {
			err.WithSuggestion("toggle the static routes generator to switch between functions and injected controllers")
		}
		return
	}

	alias := route.Target[0]
	if _, ok := p.imports.path(alias); !ok {
		p.fail(route, "target", route.Action(), "unknown package "+alias).
			WithSuggestion("add the controller package to the additional imports")
		return
	}
	for _, name := range route.Target[1:] {
		if !token.IsExported(name) {
			p.fail(route, "target", route.Action(), name+" is not exported")
			return
		}
	}

	if p.spec.IsStaticRoutesGenerator() {
		data.Call = alias + "." + route.Target[1]
		return
	}

	target := alias + "." + route.Target[1]
	idx, ok := p.byTarget[target]
	if !ok {
		idx = len(p.controllers)
		p.controllers = append(p.controllers, controllerData{Alias: alias, Type: route.Target[1]})
		p.byTarget[target] = idx
	}
	data.controller = idx
	data.function = route.Target[2]
}

// bindParams fills the bindings and call arguments of data and returns the
// arguments of the reverse route
func (p *plan) bindParams(route Route, data *routeData) []reverseArg {
	pathParams := make(map[string]router.PartType)
	for _, part := range route.Path.Parts() {
		if part.Type != router.StaticPart {
			pathParams[part.Value] = part.Type
		}
	}
	for _, name := range route.Path.ParamNames() {
		param, ok := route.Param(name)
		switch {
		case !ok:
			p.fail(route, "param "+name, name, "path parameter "+name+" is not an argument of "+route.Action())
		case param.Fixed != nil:
			p.fail(route, "param "+name, name, "path parameter "+name+" cannot have a fixed value")
		case param.Default != nil:
			p.fail(route, "param "+name, name, "path parameter "+name+" cannot have a default value")
		}
	}

	var reverse []reverseArg
	declared := make(map[string]bool)
	for _, param := range route.Params {
		field := "param " + param.Name
		if declared[param.Name] {
			p.fail(route, field, param.Name, "parameter "+param.Name+" is declared twice")
			continue
		}
		declared[param.Name] = true

		goType, ok := paramTypes[param.Type]
		if !ok {
			p.fail(route, field, param.Type, "unsupported parameter type "+param.Type).
				WithSuggestion("use string, bool, int, int32, int64, uint, uint64, float32, float64 or uuid.UUID")
			continue
		}
		partType, inPath := pathParams[param.Name]
		if partType == router.WildcardPart && goType != "string" {
			p.fail(route, field, param.Type, "wildcard parameter "+param.Name+" must be a string")
			continue
		}

		v := param.Name + "Param"
		switch {
		case param.Fixed != nil:
			lit, err := literal(goType, *param.Fixed)
			if err != nil {
				p.fail(route, field, *param.Fixed, err.Error())
				continue
			}
			data.Args = append(data.Args, lit)
			continue
		case inPath:
			data.Bindings = append(data.Bindings, bindingData{
				Var:  v,
				Expr: fmt.Sprintf("router.PathParam[%s](r, %q)", goType, param.Name),
			})
			reverse = append(reverse, reverseArg{Key: param.Name, Var: argName(param.Name), Type: goType})
		case param.Default != nil:
			lit, err := literal(goType, *param.Default)
			if err != nil {
				p.fail(route, field, *param.Default, err.Error())
				continue
			}
			data.Bindings = append(data.Bindings, bindingData{
				Var:  v,
				Expr: fmt.Sprintf("router.QueryParamOr[%s](r, %q, %s)", goType, param.Name, lit),
			})
			reverse = append(reverse, reverseArg{Key: param.Name, Var: argName(param.Name), Type: goType, Default: lit})
		default:
			data.Bindings = append(data.Bindings, bindingData{
				Var:  v,
				Expr: fmt.Sprintf("router.QueryParam[%s](r, %q)", goType, param.Name),
			})
			reverse = append(reverse, reverseArg{Key: param.Name, Var: argName(param.Name), Type: goType})
		}
		data.Args = append(data.Args, v)
	}
	return reverse
}

// addReverse records the reverse call of route. The first route of an
// action wins; two actions claiming one call name conflict.
func (p *plan) addReverse(route Route, args []reverseArg) {
	alias := route.Target[0]
	name := route.Target[len(route.Target)-1]

	var base, describe string
	switch {
	case p.spec.IsStaticRoutesGenerator() && p.spec.IsNamespaceReverseRouter():
		base, describe = exportName(alias), "the "+alias+" package"
	case p.spec.IsStaticRoutesGenerator():
		base, describe = "", "every routed function"
	case p.spec.IsNamespaceReverseRouter():
		base, describe = exportName(alias)+route.Target[1], alias+"."+route.Target[1]
	default:
		base, describe = route.Target[1], route.Target[1]+" controllers"
	}

	group, ok := p.byGroup[base]
	if !ok {
		group = &groupData{
			TypeName: "reverse" + base,
			VarName:  "Reverse" + base,
			Describe: describe,
			actions:  make(map[string]string),
		}
		if base == "" {
			group.TypeName = "reverseRoutes"
		}
		p.byGroup[base] = group
		p.groups = append(p.groups, group)
	}

	if action, taken := group.actions[name]; taken {
		if action != route.Action() {
			p.fail(route, "target", route.Action(), group.VarName+"."+name+" already reverses "+action).
				WithSuggestion("enable the namespaced reverse router")
		}
		return
	}
	group.actions[name] = route.Action()
	group.Calls = append(group.Calls, reverseCall{
		Name:   name,
		Method: route.Method,
		Path:   route.Path.Raw(),
		Action: route.Action(),
		Args:   args,
	})
}

// assignFields names the Controllers fields. A type name shared by two
// packages is prefixed with its package alias.
func (p *plan) assignFields() {
	count := make(map[string]int)
	for _, c := range p.controllers {
		count[c.Type]++
	}
	for i, c := range p.controllers {
		p.controllers[i].Field = c.Type
		if count[c.Type] > 1 {
			p.controllers[i].Field = exportName(c.Alias) + c.Type
		}
	}
	for i, r := range p.routes {
		if r.controller >= 0 {
			p.routes[i].Call = "c." + p.controllers[r.controller].Field + "." + r.function
		}
	}
}

func (p *plan) routesData(pkg string, sources []string) routesData {
	data := routesData{
		Package:     pkg,
		Sources:     sources,
		Imports:     p.imports.withRuntime().specs(),
		Static:      p.spec.IsStaticRoutesGenerator(),
		ServeMux:    p.spec.IsServeMuxProject(),
		Controllers: p.controllers,
		Routes:      p.routes,
	}
	if !data.Static {
		data.ControllersParam = "c *Controllers"
		data.ControllersArg = "c"
	}
	return data
}

func (p *plan) reverseData(pkg string, sources []string) reverseData {
	return reverseData{
		Package: pkg,
		Sources: sources,
		Imports: p.imports.withRuntime().specs(),
		Groups:  p.groups,
	}
}

// literal validates raw as a value of goType and renders it as Go source
func literal(goType, raw string) (string, error) {
	var (
		v   any
		err error
	)
	switch goType {
	case "string":
		return strconv.Quote(raw), nil
	case "uuid.UUID":
		id, err := router.Parse[uuid.UUID](raw)
		if err != nil {
			return "", fmt.Errorf("invalid uuid %q: %w", raw, err)
		}
		return fmt.Sprintf("uuid.MustParse(%q)", id.String()), nil
	case "bool":
		v, err = router.Parse[bool](raw)
	case "int":
		v, err = router.Parse[int](raw)
	case "int32":
		v, err = router.Parse[int32](raw)
	case "int64":
		v, err = router.Parse[int64](raw)
	case "uint":
		v, err = router.Parse[uint](raw)
	case "uint64":
		v, err = router.Parse[uint64](raw)
	case "float32":
		var f float32
		f, err = router.Parse[float32](raw)
		if err == nil && !finite(float64(f)) {
			err = fmt.Errorf("%s is not a finite number", raw)
		}
		v = f
	case "float64":
		var f float64
		f, err = router.Parse[float64](raw)
		if err == nil && !finite(f) {
			err = fmt.Errorf("%s is not a finite number", raw)
		}
		v = f
	default:
		return "", fmt.Errorf("unsupported parameter type %s", goType)
	}
	if err != nil {
		return "", fmt.Errorf("cannot use %q as %s: %w", raw, goType, err)
	}
	return router.Format(v), nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// argName returns a Go parameter name for a route parameter
func argName(name string) string {
	if token.IsKeyword(name) || name == "values" || name == "router" || name == "uuid" {
		return name + "Param"
	}
	return name
}

func exportName(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// packageName derives the generated package from the destination directory
func packageName(dest string) string {
	base := strings.ReplaceAll(filepath.Base(filepath.Clean(dest)), "-", "_")
	if err := utils.ValidatePackageAlias("package")(base); err != nil {
		return defaultPackage
	}
	return base
}
