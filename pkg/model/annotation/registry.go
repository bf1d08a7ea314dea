package annotation

import (
	"fmt"
	"slices"
	"sync"
)

// ParameterType represents the type of an annotation parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// Definition describes an annotation that can be decoded from text
type Definition struct {
	Name        string                   // Name used after '@'
	Kind        Kind                     // Kind of the decoded value
	Description string                   // Human-readable description
	Parameters  map[string]ParameterSpec // Parameter specifications
	Decode      func(Arguments) (Annotation, error)
	Examples    []string // Usage examples
}

// Registry defines the interface for managing annotation definitions
type Registry interface {
	// Register adds a new annotation definition
	Register(def Definition) error

	// Lookup retrieves a definition by annotation name
	Lookup(name string) (Definition, bool)

	// LookupKind retrieves a definition by the kind it decodes to
	LookupKind(kind Kind) (Definition, bool)

	// Names returns all registered annotation names, sorted
	Names() []string

	// IsRegistered checks if an annotation name is registered
	IsRegistered(name string) bool
}

// registry is the concrete implementation of Registry
type registry struct {
	mu     sync.RWMutex          // Protects concurrent access
	byName map[string]Definition // Definition storage
	byKind map[Kind]string
}

// NewRegistry creates a new, empty annotation registry
func NewRegistry() Registry {
	return &registry{
		byName: make(map[string]Definition),
		byKind: make(map[Kind]string),
	}
}

// defaultRegistry is the global registry instance
var (
	defaultRegistry     Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry with the built-in annotations registered
func DefaultRegistry() Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, def := range builtinDefinitions() {
			if err := defaultRegistry.Register(def); err != nil {
				panic(fmt.Sprintf("annotation: registering built-in %s: %v", def.Name, err))
			}
		}
	})
	return defaultRegistry
}

// Register adds a new annotation definition to the registry
func (r *registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Name == "" {
		return fmt.Errorf("annotation name cannot be empty")
	}
	if def.Kind.IsZero() {
		return fmt.Errorf("annotation %s has no kind", def.Name)
	}
	if def.Decode == nil {
		return fmt.Errorf("annotation %s has no decoder", def.Name)
	}

	// Check if already registered
	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("annotation %s is already registered", def.Name)
	}
	if existing, exists := r.byKind[def.Kind]; exists {
		return fmt.Errorf("kind %s is already registered as annotation %s", def.Kind, existing)
	}

	if err := r.validateParameters(def); err != nil {
		return fmt.Errorf("invalid definition for %s: %w", def.Name, err)
	}

	r.byName[def.Name] = def
	r.byKind[def.Kind] = def.Name
	return nil
}

// Lookup retrieves a definition by annotation name
func (r *registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.byName[name]
	return def, exists
}

// LookupKind retrieves a definition by kind
func (r *registry) LookupKind(kind Kind) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.byKind[kind]
	if !exists {
		return Definition{}, false
	}
	return r.byName[name], true
}

// Names returns all registered annotation names
func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if an annotation name is registered
func (r *registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.byName[name]
	return exists
}

// validateParameters performs basic validation on parameter specs
func (r *registry) validateParameters(def Definition) error {
	for paramName, paramSpec := range def.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > StringSliceType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}

		if paramSpec.DefaultValue != nil {
			if err := validateValueType(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateValueType checks if a value matches the parameter type
func validateValueType(paramName string, paramType ParameterType, value interface{}) error {
	switch paramType {
	case StringType:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("value for string parameter %s must be string, got %T", paramName, value)
		}
	case BoolType:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("value for bool parameter %s must be bool, got %T", paramName, value)
		}
	case IntType:
		if _, ok := value.(int); !ok {
			return fmt.Errorf("value for int parameter %s must be int, got %T", paramName, value)
		}
	case StringSliceType:
		if _, ok := value.([]string); !ok {
			return fmt.Errorf("value for []string parameter %s must be []string, got %T", paramName, value)
		}
	default:
		return fmt.Errorf("unknown parameter type for %s: %d", paramName, paramType)
	}

	return nil
}

func nonEmptyString(v interface{}) error {
	if s, _ := v.(string); s == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// Arguments holds the typed parameter values of a decoded annotation
type Arguments map[string]interface{}

// GetString returns a string parameter value with optional default
func (a Arguments) GetString(paramName string, defaultValue ...string) string {
	if value, exists := a[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (a Arguments) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := a[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (a Arguments) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := a[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value with optional default
func (a Arguments) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := a[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// Has checks if a parameter exists
func (a Arguments) Has(paramName string) bool {
	_, exists := a[paramName]
	return exists
}
