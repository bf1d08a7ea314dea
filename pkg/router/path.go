// Package router is the runtime behind generated route tables. Routes are
// plain http.Handlers; adapters mount them on echo, gin, fiber or a
// net/http ServeMux and expose path parameters through r.PathValue.
package router

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PartType represents the type of path part
type PartType int

const (
	StaticPart PartType = iota
	ParamPart
	RegexPart
	WildcardPart
)

// PathPart is one "/"-separated segment of a Path
type PathPart struct {
	Type    PartType
	Value   string // literal text for static parts, parameter name otherwise
	Pattern string // regular expression of a RegexPart
}

// Path is a route path in routes-file syntax:
//
//	/users/:id              single segment parameter
//	/assets/*file           wildcard, captures the rest of the path
//	/items/$id<[0-9]+>      parameter constrained by a regular expression
type Path string

// Raw returns the path as written
func (p Path) Raw() string {
	return string(p)
}

// Parts splits the path into segments. A "$name<" segment without its
// closing ">" is kept as static text.
func (p Path) Parts() []PathPart {
	raw := strings.TrimPrefix(string(p), "/")
	segments := strings.Split(raw, "/")
	parts := make([]PathPart, 0, len(segments))

	for _, segment := range segments {
		switch {
		case strings.HasPrefix(segment, ":") && len(segment) > 1:
			parts = append(parts, PathPart{Type: ParamPart, Value: segment[1:]})
		case strings.HasPrefix(segment, "*") && len(segment) > 1:
			parts = append(parts, PathPart{Type: WildcardPart, Value: segment[1:]})
		case strings.HasPrefix(segment, "$") && strings.HasSuffix(segment, ">") && strings.Contains(segment, "<"):
			open := strings.IndexByte(segment, '<')
			parts = append(parts, PathPart{
				Type:    RegexPart,
				Value:   segment[1:open],
				Pattern: segment[open+1 : len(segment)-1],
			})
		default:
			parts = append(parts, PathPart{Type: StaticPart, Value: segment})
		}
	}
	return parts
}

// ParamNames returns the names of every parameter in order
func (p Path) ParamNames() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type != StaticPart {
			names = append(names, part.Value)
		}
	}
	return names
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the path's syntax
func (p Path) Validate() error {
	if !strings.HasPrefix(string(p), "/") {
		return fmt.Errorf("path %q must start with /", p)
	}

	parts := p.Parts()
	seen := make(map[string]bool)
	for i, part := range parts {
		if part.Type == StaticPart {
			if strings.ContainsAny(part.Value, "{}") || strings.HasPrefix(part.Value, "$") {
				return fmt.Errorf("path %q has a malformed segment %q", p, part.Value)
			}
			continue
		}
		if !identifierPattern.MatchString(part.Value) {
			return fmt.Errorf("path %q has an invalid parameter name %q", p, part.Value)
		}
		if seen[part.Value] {
			return fmt.Errorf("path %q declares parameter %q twice", p, part.Value)
		}
		seen[part.Value] = true

		switch part.Type {
		case WildcardPart:
			if i != len(parts)-1 {
				return fmt.Errorf("path %q: wildcard *%s must be the last segment", p, part.Value)
			}
		case RegexPart:
			if _, err := regexp.Compile(part.Pattern); err != nil {
				return fmt.Errorf("path %q: parameter %s has an invalid pattern: %w", p, part.Value, err)
			}
		}
	}
	return nil
}

// EchoPath converts the path to echo syntax: /users/:id, /assets/*
func (p Path) EchoPath() string {
	return p.render(func(part PathPart) string {
		if part.Type == WildcardPart {
			return "*"
		}
		return ":" + part.Value
	})
}

// GinPath converts the path to gin syntax: /users/:id, /assets/*file
func (p Path) GinPath() string {
	return p.render(func(part PathPart) string {
		if part.Type == WildcardPart {
			return "*" + part.Value
		}
		return ":" + part.Value
	})
}

// FiberPath converts the path to fiber syntax: /users/:id, /assets/*
func (p Path) FiberPath() string {
	return p.EchoPath()
}

// MuxPattern converts the path to a net/http ServeMux pattern. A trailing
// slash matches only itself.
func (p Path) MuxPattern() string {
	pattern := p.render(func(part PathPart) string {
		if part.Type == WildcardPart {
			return "{" + part.Value + "...}"
		}
		return "{" + part.Value + "}"
	})
	if strings.HasSuffix(pattern, "/") {
		pattern += "{$}"
	}
	return pattern
}

func (p Path) render(param func(PathPart) string) string {
	var b strings.Builder
	for _, part := range p.Parts() {
		b.WriteByte('/')
		if part.Type == StaticPart {
			b.WriteString(part.Value)
			continue
		}
		b.WriteString(param(part))
	}
	return b.String()
}

// Build fills in the parameters and returns the escaped URL path. Wildcard
// values keep their "/" separators.
func (p Path) Build(values map[string]string) (string, error) {
	var b strings.Builder
	for _, part := range p.Parts() {
		b.WriteByte('/')
		if part.Type == StaticPart {
			b.WriteString(part.Value)
			continue
		}

		value, ok := values[part.Value]
		if !ok {
			return "", fmt.Errorf("path %q: missing value for parameter %s", p, part.Value)
		}
		if part.Type != WildcardPart {
			b.WriteString(url.PathEscape(value))
			continue
		}
		segments := strings.Split(strings.TrimPrefix(value, "/"), "/")
		for i, segment := range segments {
			segments[i] = url.PathEscape(segment)
		}
		b.WriteString(strings.Join(segments, "/"))
	}
	return b.String(), nil
}
