package routes

import (
	"strings"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/router"
)

// Param is one argument of a route's controller call
type Param struct {
	Name    string
	Type    string  // Go type, "string" when omitted
	Default *string // raw literal after "?=", used when the query parameter is absent
	Fixed   *string // raw literal after "=", the value is never read from the request
}

// Route is one line of a routes file
type Route struct {
	Method    string
	Path      router.Path
	Target    []string // dotted call target, e.g. [controllers Users Show]
	Params    []Param
	Modifiers []string // from "+ ..." lines directly above the route
	Location  errors.SourceLocation
}

// Action returns the dotted call target
func (r Route) Action() string {
	return strings.Join(r.Target, ".")
}

// Param returns the call parameter called name
func (r Route) Param(name string) (Param, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// File is a parsed routes file
type File struct {
	Name   string
	Routes []Route
}
