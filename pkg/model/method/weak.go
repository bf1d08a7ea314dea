package method

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/types"
)

var errorType = reflect.TypeFor[error]()

// WeakMethod is an Accessor bound to one getter of one declaring type. It
// holds its Class weakly and re-resolves the method on the instance's
// runtime type at invocation time.
type WeakMethod struct {
	class      weak.Pointer[Class]
	loaderID   uuid.UUID
	declaring  types.ModelType
	name       string
	returnType types.ModelType
	returnsErr bool

	// last resolution; swapped atomically, never mutated in place
	resolved atomic.Pointer[resolution]
}

type resolution struct {
	receiver   reflect.Type
	index      int
	viaPointer bool
}

// Of binds the getter called name on class. The method must take no
// arguments and return either T or (T, error). Methods with pointer
// receivers are found for struct types too.
func Of(class *Class, name string) (*WeakMethod, error) {
	if class == nil {
		return nil, errors.InvalidArgument("cannot bind getter %q without a declaring class", name)
	}
	if name == "" {
		return nil, errors.InvalidArgument("getter name is required for %s", class)
	}
	if class.Released() {
		return nil, errors.StaleReference("class %s was released before binding %s", class, name)
	}

	rt := class.Type().Reflect()
	method, ok := lookupMethod(rt, name)
	if !ok {
		return nil, errors.InvalidArgument("%s has no exported method %s", class.Type().SimpleName(), name)
	}

	ret, returnsErr, err := getterShape(method.Type, rt.Kind() == reflect.Interface)
	if err != nil {
		return nil, errors.InvalidArgument("%s.%s is not a getter: %v", class.Type().SimpleName(), name, err)
	}

	return &WeakMethod{
		class:      weak.Make(class),
		loaderID:   class.LoaderID(),
		declaring:  class.Type(),
		name:       name,
		returnType: types.FromReflect(ret),
		returnsErr: returnsErr,
	}, nil
}

// MustOf is like Of but panics on error
func MustOf(class *Class, name string) *WeakMethod {
	m, err := Of(class, name)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the getter's method name
func (m *WeakMethod) Name() string {
	return m.name
}

// DeclaringType returns the type the getter was bound on
func (m *WeakMethod) DeclaringType() types.ModelType {
	return m.declaring
}

// ReturnType returns the getter's value type
func (m *WeakMethod) ReturnType() types.ModelType {
	return m.returnType
}

// LoaderID returns the identity of the loader the handle was bound through
func (m *WeakMethod) LoaderID() uuid.UUID {
	return m.loaderID
}

// Stale reports whether the bound class is gone or released
func (m *WeakMethod) Stale() bool {
	class := m.class.Value()
	return class == nil || class.Released()
}

// Rebind binds the same getter through another loader
func (m *WeakMethod) Rebind(loader *Loader) (*WeakMethod, error) {
	class, err := loader.Define(m.declaring)
	if err != nil {
		return nil, err
	}
	return Of(class, m.name)
}

// Invoke calls the getter on instance
func (m *WeakMethod) Invoke(instance any) (any, error) {
	if IsNil(instance) {
		return nil, errors.InvalidArgument("cannot invoke %s on a nil instance", m)
	}
	if m.Stale() {
		return nil, errors.StaleReference("declaring type %s of getter %s was reclaimed", m.declaring.SimpleName(), m.name).
			WithContext("loader", m.loaderID.String())
	}

	fn := m.resolve(reflect.ValueOf(instance))
	return guard(m.String(), func() (any, error) {
		out := fn.Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	})
}

// resolve finds the method value for v, caching the index per receiver type.
// An instance without a compatible method panics.
func (m *WeakMethod) resolve(v reflect.Value) reflect.Value {
	rt := v.Type()
	if r := m.resolved.Load(); r != nil && r.receiver == rt {
		return r.bind(v)
	}

	r := &resolution{receiver: rt}
	method, ok := rt.MethodByName(m.name)
	if !ok && rt.Kind() != reflect.Pointer {
		method, ok = reflect.PointerTo(rt).MethodByName(m.name)
		r.viaPointer = true
	}
	if !ok {
		panic(fmt.Sprintf("method: %s has no method %s (getter bound on %s)", rt, m.name, m.declaring.SimpleName()))
	}
	if _, _, err := getterShape(method.Type, false); err != nil {
		panic(fmt.Sprintf("method: %s.%s is not a getter: %v", rt, m.name, err))
	}
	r.index = method.Index

	m.resolved.Store(r)
	return r.bind(v)
}

func (r *resolution) bind(v reflect.Value) reflect.Value {
	if r.viaPointer {
		ptr := reflect.New(r.receiver)
		ptr.Elem().Set(v)
		v = ptr
	}
	return v.Method(r.index)
}

// String returns "Type.Method"
func (m *WeakMethod) String() string {
	return m.declaring.SimpleName() + "." + m.name
}

func lookupMethod(rt reflect.Type, name string) (reflect.Method, bool) {
	if method, ok := rt.MethodByName(name); ok {
		return method, true
	}
	if rt.Kind() != reflect.Pointer && rt.Kind() != reflect.Interface {
		return reflect.PointerTo(rt).MethodByName(name)
	}
	return reflect.Method{}, false
}

// getterShape validates a method type: no arguments besides the receiver,
// returning T or (T, error).
func getterShape(ft reflect.Type, iface bool) (reflect.Type, bool, error) {
	in := 1
	if iface {
		in = 0
	}
	if ft.NumIn() != in || ft.IsVariadic() {
		return nil, false, fmt.Errorf("takes arguments")
	}
	switch ft.NumOut() {
	case 1:
		return ft.Out(0), false, nil
	case 2:
		if ft.Out(1) != errorType {
			return nil, false, fmt.Errorf("second result must be error, got %s", ft.Out(1))
		}
		return ft.Out(0), true, nil
	default:
		return nil, false, fmt.Errorf("must return a value or (value, error)")
	}
}
