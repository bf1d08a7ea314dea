package router

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Route binds a method and path to a handler. Action names the controller
// method the route was generated from, e.g. "controllers.Users.Show".
type Route struct {
	Method    string
	Path      Path
	Action    string
	Modifiers []string
	Handler   http.Handler
}

// String returns "GET /users/:id -> controllers.Users.Show"
func (r Route) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Method, r.Path, r.Action)
}

// HasModifier reports whether the routes file tagged the route with name
func (r Route) HasModifier(name string) bool {
	for _, m := range r.Modifiers {
		if m == name {
			return true
		}
	}
	return false
}

// Table is a validated, ordered set of routes
type Table struct {
	routes []compiledRoute
}

type compiledRoute struct {
	Route
	constraints map[string]*regexp.Regexp
}

// NewTable validates every route and compiles its parameter patterns
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make([]compiledRoute, 0, len(routes))}
	for _, r := range routes {
		if r.Method == "" {
			return nil, fmt.Errorf("route %s has no method", r)
		}
		if r.Handler == nil {
			return nil, fmt.Errorf("route %s has no handler", r)
		}
		if err := r.Path.Validate(); err != nil {
			return nil, err
		}

		cr := compiledRoute{Route: r, constraints: make(map[string]*regexp.Regexp)}
		cr.Method = strings.ToUpper(r.Method)
		for _, part := range r.Path.Parts() {
			if part.Type == RegexPart {
				cr.constraints[part.Value] = regexp.MustCompile("^(?:" + part.Pattern + ")$")
			}
		}
		t.routes = append(t.routes, cr)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in declaration order
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, cr := range t.routes {
		out[i] = cr.Route
	}
	return out
}

// Lookup returns the first route generated from action
func (t *Table) Lookup(action string) (Route, bool) {
	for _, cr := range t.routes {
		if cr.Action == action {
			return cr.Route, true
		}
	}
	return Route{}, false
}

// Len returns the number of routes
func (t *Table) Len() int {
	return len(t.routes)
}

// ServeHTTP checks pattern-constrained parameters, answering 404 when one
// does not match, then calls the route handler.
func (cr compiledRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for name, pattern := range cr.constraints {
		if !pattern.MatchString(r.PathValue(name)) {
			WriteError(w, ErrNotFound(fmt.Sprintf("no route matches %s", r.URL.Path)))
			return
		}
	}
	cr.Handler.ServeHTTP(w, r)
}

// params returns the non-static parts of the route path
func (cr compiledRoute) params() []PathPart {
	var params []PathPart
	for _, part := range cr.Path.Parts() {
		if part.Type != StaticPart {
			params = append(params, part)
		}
	}
	return params
}

// setParams copies framework path parameters into r's path values
func setParams(r *http.Request, params []PathPart, lookup func(PathPart) string) {
	for _, part := range params {
		r.SetPathValue(part.Value, strings.TrimPrefix(lookup(part), "/"))
	}
}
