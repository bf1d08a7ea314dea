package annotation

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/modelcore/internal/errors"
)

// annotationList is the root of an annotation text such as
// `@Hidden @Rename(name="id")`.
type annotationList struct {
	Annotations []*annotationNode `parser:"@@*"`
}

type annotationNode struct {
	Pos  lexer.Position
	Name string          `parser:"'@' @Ident"`
	Args []*argumentNode `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

type argumentNode struct {
	Pos   lexer.Position
	Key   string     `parser:"@Ident '='"`
	Value *valueNode `parser:"@@"`
}

type valueNode struct {
	String *string   `parser:"  @String"`
	Int    *int      `parser:"| @Int"`
	Bool   *boolean  `parser:"| @('true' | 'false')"`
	List   *listNode `parser:"| @@"`
	Ident  *string   `parser:"| @Ident"`
}

type listNode struct {
	Open  string       `parser:"@'['"`
	Items []*valueNode `parser:"( @@ ( ',' @@ )* )? ']'"`
}

type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[@(),=\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser decodes annotation text into a Set using a Registry
type Parser struct {
	parser   *participle.Parser[annotationList]
	registry Registry
}

// NewParser creates a parser resolving names against registry
func NewParser(registry Registry) *Parser {
	return &Parser{
		parser: participle.MustBuild[annotationList](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

var (
	defaultParser     *Parser
	defaultParserOnce sync.Once
)

// Parse decodes text with the default registry
func Parse(text string) (Set, error) {
	defaultParserOnce.Do(func() {
		defaultParser = NewParser(DefaultRegistry())
	})
	return defaultParser.Parse(text)
}

// Parse decodes text such as `@Hidden @Rename(name="id")` into a Set
func (p *Parser) Parse(text string) (Set, error) {
	return p.ParseAt(text, errors.SourceLocation{})
}

// ParseAt decodes text, reporting errors relative to loc
func (p *Parser) ParseAt(text string, loc errors.SourceLocation) (Set, error) {
	if strings.TrimSpace(text) == "" {
		return Set{}, nil
	}

	root, err := p.parser.ParseString(loc.File, text)
	if err != nil {
		return Set{}, syntaxError(err, loc)
	}

	entries := make(map[Kind]Annotation, len(root.Annotations))
	for _, node := range root.Annotations {
		a, err := p.decode(node, at(loc, node.Pos))
		if err != nil {
			return Set{}, err
		}
		kind := KindOf(a)
		if _, exists := entries[kind]; exists {
			return Set{}, errors.InvalidArgument("annotation @%s given more than once", node.Name).
				WithLocation(at(loc, node.Pos))
		}
		entries[kind] = a
	}
	return newSet(entries), nil
}

func (p *Parser) decode(node *annotationNode, loc errors.SourceLocation) (Annotation, error) {
	def, ok := p.registry.Lookup(node.Name)
	if !ok {
		return nil, errors.NewValidationError("@"+node.Name, "a registered annotation", "unknown annotation").
			WithLocation(loc).
			WithSuggestion(fmt.Sprintf("registered annotations: %s", strings.Join(p.registry.Names(), ", ")))
	}

	args := make(Arguments, len(node.Args))
	for _, arg := range node.Args {
		spec, ok := def.Parameters[arg.Key]
		if !ok {
			return nil, errors.NewValidationError(arg.Key, fmt.Sprintf("a parameter of @%s", def.Name), "unknown parameter").
				WithLocation(at(loc, arg.Pos))
		}
		if _, dup := args[arg.Key]; dup {
			return nil, errors.NewValidationErrorWithValue(arg.Key, nil, "parameter given more than once").
				WithLocation(at(loc, arg.Pos))
		}
		value, err := convertValue(arg.Value.raw(), spec.Type)
		if err != nil {
			return nil, errors.NewValidationError(arg.Key, spec.Type.String(), err.Error()).
				WithLocation(at(loc, arg.Pos))
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return nil, errors.NewValidationErrorWithValue(arg.Key, value, err.Error()).
					WithLocation(at(loc, arg.Pos))
			}
		}
		args[arg.Key] = value
	}

	for name, spec := range def.Parameters {
		if _, present := args[name]; present {
			continue
		}
		if spec.Required {
			return nil, errors.NewValidationErrorWithValue(name, nil, fmt.Sprintf("required parameter of @%s is missing", def.Name)).
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("example: %s", strings.Join(def.Examples, ", ")))
		}
		if spec.DefaultValue != nil {
			args[name] = spec.DefaultValue
		}
	}

	a, err := def.Decode(args)
	if err != nil {
		return nil, errors.Wrapf(errors.ValidationErrorCode, err, "failed to decode @%s", def.Name).WithLocation(loc)
	}
	if KindOf(a) != def.Kind {
		return nil, errors.InvalidArgument("decoder for @%s returned %s, expected %s", def.Name, KindOf(a), def.Kind)
	}
	return a, nil
}

func (v *valueNode) raw() interface{} {
	switch {
	case v.String != nil:
		return *v.String
	case v.Int != nil:
		return *v.Int
	case v.Bool != nil:
		return bool(*v.Bool)
	case v.List != nil:
		items := make([]interface{}, len(v.List.Items))
		for i, item := range v.List.Items {
			items[i] = item.raw()
		}
		return items
	case v.Ident != nil:
		return *v.Ident
	default:
		return nil
	}
}

func convertValue(value interface{}, paramType ParameterType) (interface{}, error) {
	switch paramType {
	case StringType:
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
	case BoolType:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		case int:
			return v != 0, nil
		}
	case IntType:
		switch v := value.(type) {
		case int:
			return v, nil
		case string:
			return strconv.Atoi(v)
		}
	case StringSliceType:
		switch v := value.(type) {
		case []interface{}:
			result := make([]string, len(v))
			for i, item := range v {
				result[i] = fmt.Sprintf("%v", item)
			}
			return result, nil
		case string:
			return []string{v}, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %s", value, paramType)
}

func syntaxError(err error, loc errors.SourceLocation) error {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		pos := perr.Position()
		var token string
		var unexpected *participle.UnexpectedTokenError
		if stderrors.As(err, &unexpected) {
			token = unexpected.Unexpected.Value
		}
		return errors.NewSyntaxErrorWithToken(perr.Message(), token).
			WithLocation(at(loc, pos)).
			WithSuggestion(`annotations look like @Name or @Name(key="value")`)
	}
	return errors.WrapParseError("annotation", err)
}

func at(base errors.SourceLocation, pos lexer.Position) errors.SourceLocation {
	loc := base
	if base.Line == 0 {
		loc.Line = pos.Line
		loc.Column = pos.Column
		return loc
	}
	loc.Line = base.Line + pos.Line - 1
	if pos.Line <= 1 {
		loc.Column = base.Column + pos.Column - 1
	} else {
		loc.Column = pos.Column
	}
	return loc
}
