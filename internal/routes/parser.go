package routes

import (
	stderrors "errors"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/router"
)

// routesFile is the grammar root: one entry per line
type routesFile struct {
	Entries []*entryNode `parser:"@@*"`
}

type entryNode struct {
	Pos      lexer.Position
	Modifier *string    `parser:"(  @Modifier EOL?"`
	Route    *routeNode `parser:"| @@ EOL?"`
	Blank    bool       `parser:"| @EOL )"`
}

type routeNode struct {
	Pos    lexer.Position
	Method string       `parser:"@Ident"`
	Path   string       `parser:"@Path"`
	Target []string     `parser:"@Ident ( \".\" @Ident )*"`
	Params []*paramNode `parser:"( \"(\" ( @@ ( \",\" @@ )* )? \")\" )?"`
}

type paramNode struct {
	Pos     lexer.Position
	Name    string       `parser:"@Ident"`
	Type    []string     `parser:"( \":\" @Ident ( \".\" @Ident )* )?"`
	Default *literalNode `parser:"( \"?=\" @@"`
	Fixed   *literalNode `parser:"| \"=\" @@ )?"`
}

type literalNode struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
}

func (l *literalNode) raw() string {
	switch {
	case l.String != nil:
		return *l.String
	case l.Number != nil:
		return *l.Number
	default:
		return *l.Ident
	}
}

var routesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Modifier", Pattern: `\+[^\n]*`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Path", Pattern: `/[^\s]*`},
	{Name: "Number", Pattern: `-?\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `\?=|->|[.(),:=]`},
})

var (
	parserOnce   sync.Once
	routesParser *participle.Parser[routesFile]
	grammarErr   error
)

func grammar() (*participle.Parser[routesFile], error) {
	parserOnce.Do(func() {
		routesParser, grammarErr = participle.Build[routesFile](
			participle.Lexer(routesLexer),
			participle.Elide("Whitespace", "Comment"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		)
	})
	return routesParser, grammarErr
}

// Parse parses the routes file called name
func Parse(name, content string) (*File, error) {
	p, err := grammar()
	if err != nil {
		return nil, errors.WrapParseError("routes grammar", err)
	}

	ast, err := p.ParseString(name, content)
	if err != nil {
		return nil, syntaxError(name, err)
	}

	file := &File{Name: name}
	var modifiers []string
	for _, entry := range ast.Entries {
		switch {
		case entry.Modifier != nil:
			modifiers = append(modifiers, strings.Fields(strings.TrimPrefix(*entry.Modifier, "+"))...)
		case entry.Route != nil:
			file.Routes = append(file.Routes, convertRoute(name, entry.Route, modifiers))
			modifiers = nil
		}
	}
	if len(modifiers) > 0 {
		return nil, errors.NewSyntaxError("modifiers at the end of the file apply to no route").
			WithLocation(errors.SourceLocation{File: name})
	}
	return file, nil
}

func convertRoute(file string, node *routeNode, modifiers []string) Route {
	route := Route{
		Method:    strings.ToUpper(node.Method),
		Path:      router.Path(node.Path),
		Target:    node.Target,
		Modifiers: modifiers,
		Location:  location(file, node.Pos),
	}
	for _, p := range node.Params {
		param := Param{Name: p.Name, Type: "string"}
		if len(p.Type) > 0 {
			param.Type = strings.Join(p.Type, ".")
		}
		if p.Default != nil {
			raw := p.Default.raw()
			param.Default = &raw
		}
		if p.Fixed != nil {
			raw := p.Fixed.raw()
			param.Fixed = &raw
		}
		route.Params = append(route.Params, param)
	}
	return route
}

func location(file string, pos lexer.Position) errors.SourceLocation {
	return errors.SourceLocation{File: file, Line: pos.Line, Column: pos.Column}
}

// unexpectedToken returns the token participle stopped at, if any
func unexpectedToken(err error) string {
	var unexpected *participle.UnexpectedTokenError
	if stderrors.As(err, &unexpected) {
		return unexpected.Unexpected.Value
	}
	return ""
}

func syntaxError(file string, err error) error {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		return errors.NewSyntaxErrorWithToken(perr.Message(), unexpectedToken(err)).
			WithLocation(location(file, perr.Position())).
			WithSuggestion("routes are written as: METHOD /path package.Controller.Action(param: type)")
	}
	return errors.WrapParseError(file, err)
}
