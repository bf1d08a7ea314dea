// Package method binds property getters to their declaring types without
// keeping those types' bindings alive.
//
// A Loader is a scope that owns Class bindings, much like a plugin or
// session scope. Handles created by Of reference their Class weakly: once
// the Loader is closed, or dropped and collected, every handle bound
// through it reports a stale reference instead of dispatching.
package method

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/types"
)

// Loader owns the Class bindings defined through it
type Loader struct {
	id      uuid.UUID
	name    string
	mu      sync.Mutex
	classes map[reflect.Type]*Class
	closed  bool
}

// NewLoader creates an open loader
func NewLoader(name string) *Loader {
	return &Loader{
		id:      uuid.New(),
		name:    name,
		classes: make(map[reflect.Type]*Class),
	}
}

// ID returns the loader's unique identity
func (l *Loader) ID() uuid.UUID {
	return l.id
}

// Name returns the loader's name
func (l *Loader) Name() string {
	return l.name
}

// Define returns the Class for t, creating it on first use
func (l *Loader) Define(t types.ModelType) (*Class, error) {
	if t.IsZero() {
		return nil, errors.InvalidArgument("cannot define a class for the zero type")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, errors.InvalidArgument("loader %s is closed", l)
	}

	if class, exists := l.classes[t.Reflect()]; exists {
		return class, nil
	}

	class := &Class{typ: t, loaderID: l.id, loaderName: l.name}
	l.classes[t.Reflect()] = class
	return class, nil
}

// Lookup returns the Class previously defined for t
func (l *Loader) Lookup(t types.ModelType) (*Class, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	class, exists := l.classes[t.Reflect()]
	return class, exists
}

// Len returns the number of live classes
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.classes)
}

// Close releases every class and drops the loader's references to them.
// Handles bound through this loader fail with a stale reference afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for _, class := range l.classes {
		class.released.Store(true)
	}
	clear(l.classes)
}

// Closed reports whether Close has been called
func (l *Loader) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed
}

// String returns "name(uuid)"
func (l *Loader) String() string {
	return fmt.Sprintf("%s(%s)", l.name, l.id)
}

// Class is a loader-owned binding of a declaring type
type Class struct {
	typ        types.ModelType
	loaderID   uuid.UUID
	loaderName string
	released   atomic.Bool
}

// Type returns the bound type
func (c *Class) Type() types.ModelType {
	return c.typ
}

// LoaderID returns the identity of the owning loader
func (c *Class) LoaderID() uuid.UUID {
	return c.loaderID
}

// Released reports whether the owning loader was closed
func (c *Class) Released() bool {
	return c.released.Load()
}

func (c *Class) String() string {
	return fmt.Sprintf("%s@%s", c.typ.SimpleName(), c.loaderName)
}
