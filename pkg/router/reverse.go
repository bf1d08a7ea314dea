package router

import "net/url"

// Call is a resolved reverse route
type Call struct {
	Method string
	URL    string
}

func (c Call) String() string {
	return c.URL
}

// Reverse builds the Call for path. Values not consumed by path parameters
// become query parameters, sorted by name.
func Reverse(method string, path Path, values map[string]any) (Call, error) {
	pathValues := make(map[string]string)
	names := make(map[string]bool)
	for _, name := range path.ParamNames() {
		names[name] = true
		if v, ok := values[name]; ok {
			pathValues[name] = Format(v)
		}
	}

	u, err := path.Build(pathValues)
	if err != nil {
		return Call{}, err
	}

	query := url.Values{}
	for k, v := range values {
		if !names[k] {
			query.Set(k, Format(v))
		}
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return Call{Method: method, URL: u}, nil
}

// MustReverse is like Reverse but panics on error
func MustReverse(method string, path Path, values map[string]any) Call {
	c, err := Reverse(method, path, values)
	if err != nil {
		panic(err)
	}
	return c
}
