// Package binding reads model instances through their schema.
package binding

import (
	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/schema"
)

// Field is one visible property and the key it is encoded under
type Field struct {
	Key      string
	Property *schema.Property
}

// Fields lists the properties Encode reads, sorted by property name.
// Properties annotated Hidden are skipped and Rename replaces the key.
func Fields(s *schema.Schema) ([]Field, error) {
	var fields []Field
	keys := make(map[string]string)
	for _, p := range s.Properties() {
		if p.HasAnnotation(annotation.KindFor[annotation.Hidden]()) {
			continue
		}
		key := p.Name()
		if rename, ok := schema.AnnotationOf[annotation.Rename](p); ok {
			key = rename.Name
		}
		if other, taken := keys[key]; taken {
			return nil, errors.NewConflictError(p.Name(), "encoded key '"+key+"' is already used by "+other)
		}
		keys[key] = p.Name()
		fields = append(fields, Field{Key: key, Property: p})
	}
	return fields, nil
}

// Encode reads every visible property of instance into a map. The first
// failing read aborts encoding and its error is returned unchanged.
func Encode(s *schema.Schema, instance any) (map[string]any, error) {
	fields, err := Fields(s)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := f.Property.Value(instance)
		if err != nil {
			return nil, err
		}
		out[f.Key] = v
	}
	return out, nil
}
