package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/annotation"
)

// ValidateSetterAnnotations reports every setter annotation whose kind is not
// in allowed, one ValidationError per offending annotation.
func ValidateSetterAnnotations(s *Schema, allowed ...annotation.Kind) error {
	var errs *errors.MultipleErrors
	for _, p := range s.Properties() {
		for _, kind := range p.setterAnns.Kinds() {
			if slices.Contains(allowed, kind) {
				continue
			}
			verr := errors.NewValidationError(
				fmt.Sprintf("%s.%s", s.typ.SimpleName(), p.name),
				"getter annotation",
				fmt.Sprintf("@%s on the setter", kind.Name()),
			).WithContext("declared_by", declarerNames(p))
			verr.WithSuggestion(fmt.Sprintf("move @%s to the getter of %s", kind.Name(), p.name))
			errors.AddToMultiple(&errs, verr)
		}
	}
	return errs.ErrorOrNil()
}

func declarerNames(p *Property) string {
	names := make([]string, 0, len(p.declaring))
	for _, t := range p.declaring {
		names = append(names, t.SimpleName())
	}
	return strings.Join(names, ", ")
}
