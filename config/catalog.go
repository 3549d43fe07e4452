package config

import "fmt"

// Catalog maps the class names used in recipe files to Go constructor
// functions or prototype pointers. Recipes can only instantiate classes
// registered here.
type Catalog struct {
	targets map[string]any
	order   []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		targets: make(map[string]any),
	}
}

// Register binds a class name to a constructor function or pointer-to-struct
// prototype. Registering the same name twice is an error.
//
// Usage:
//
//	cat := config.NewCatalog()
//	cat.Register("ConsoleLogger", NewConsoleLogger)
//	cat.Register("App", NewApp)
func (t *Catalog) Register(class string, target any) error {
	if class == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if target == nil {
		return fmt.Errorf("class %q: target cannot be nil", class)
	}
	if _, exists := t.targets[class]; exists {
		return fmt.Errorf("class %q already registered", class)
	}

	t.targets[class] = target
	t.order = append(t.order, class)

	return nil
}

// MustRegister binds a class name or panics - use only during startup.
func (t *Catalog) MustRegister(class string, target any) *Catalog {
	if err := t.Register(class, target); err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the target registered under class.
func (t *Catalog) Lookup(class string) (any, bool) {
	target, ok := t.targets[class]
	return target, ok
}

// Classes returns the registered class names in registration order.
func (t *Catalog) Classes() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
