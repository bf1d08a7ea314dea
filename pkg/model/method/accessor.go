package method

import (
	"fmt"
	"reflect"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/types"
)

// Accessor reads one property value off an instance.
//
// Invoke fails with an InvalidArgument error for a nil instance, a
// StaleReference error when the binding was reclaimed and an
// InvocationFailure error wrapping whatever the getter returned or panicked
// with. An instance whose type has no compatible getter is a programmer
// error and panics.
type Accessor interface {
	Invoke(instance any) (any, error)
	ReturnType() types.ModelType
}

// Func adapts a plain function into an Accessor. Unlike WeakMethod it holds
// fn strongly.
func Func[I, T any](name string, fn func(I) (T, error)) Accessor {
	return &funcAccessor[I, T]{name: name, fn: fn}
}

type funcAccessor[I, T any] struct {
	name string
	fn   func(I) (T, error)
}

func (f *funcAccessor[I, T]) Invoke(instance any) (any, error) {
	if IsNil(instance) {
		return nil, errors.InvalidArgument("cannot invoke %s on a nil instance", f.name)
	}
	typed, ok := instance.(I)
	if !ok {
		panic(fmt.Sprintf("method: %s expects %s, got %T", f.name, types.Of[I]().SimpleName(), instance))
	}
	return guard(f.name, func() (any, error) {
		v, err := f.fn(typed)
		return v, err
	})
}

func (f *funcAccessor[I, T]) ReturnType() types.ModelType {
	return types.Of[T]()
}

func (f *funcAccessor[I, T]) String() string {
	return f.name
}

// guard runs call, converting returned errors and panics into InvocationFailure
func guard(name string, call func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			result = nil
			err = errors.InvocationFailure(cause, "getter %s panicked", name)
		}
	}()

	value, callErr := call()
	if callErr != nil {
		return nil, errors.InvocationFailure(callErr, "getter %s failed", name)
	}
	return value, nil
}

// IsNil reports whether instance is nil or a nil pointer. Nil slices, maps,
// funcs and channels are valid receivers and are not reported.
func IsNil(instance any) bool {
	if instance == nil {
		return true
	}
	v := reflect.ValueOf(instance)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
