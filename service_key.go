package gantry

// Key provides type-safe service identification.
// Use NewKey to create typed keys for your services.
type Key[T any] struct {
	id string
}

// NewKey creates a new typed service key.
// The type parameter T ensures type safety when defining and resolving services.
//
// Example:
//
//	var DatabaseKey = NewKey[*Database]("database")
//	var MailerKey = NewKey[*Mailer]("mailer")
func NewKey[T any](id string) Key[T] {
	return Key[T]{id: id}
}

// ID returns the string id of the service key.
func (k Key[T]) ID() string {
	return k.id
}

// DefineKey registers a service recipe using a typed service key.
// This provides type safety and autocomplete support compared to string-based registration.
//
// Example:
//
//	var DatabaseKey = NewKey[*Database]("database")
//	DefineKey(c, DatabaseKey, NewDatabase, Args(Ref("config")))
func DefineKey[T any](c Container, key Key[T], target any, opts ...DefineOption) error {
	return c.Define(key.id, target, opts...)
}

// SetKey stores a pre-built instance under a typed service key.
func SetKey[T any](c Container, key Key[T], instance T) error {
	return c.SetInstance(key.id, instance)
}

// ResolveKey resolves a service using a typed service key.
// This provides type safety and autocomplete support compared to string-based resolution.
//
// Example:
//
//	db, err := ResolveKey(c, DatabaseKey)
func ResolveKey[T any](c Container, key Key[T]) (T, error) {
	service, err := c.Resolve(key.id)
	if err != nil {
		var zero T
		return zero, err
	}

	result, ok := service.(T)
	if !ok {
		var zero T
		return zero, ErrTypeMismatch(key.id, service)
	}

	return result, nil
}

// MustKey resolves a service using a typed service key and panics on error.
//
// Example:
//
//	db := MustKey(c, DatabaseKey)
func MustKey[T any](c Container, key Key[T]) T {
	result, err := ResolveKey(c, key)
	if err != nil {
		panic(err)
	}
	return result
}

// HasKey checks if a service is registered using a typed service key.
func HasKey[T any](c Container, key Key[T]) bool {
	return c.Has(key.id)
}

// LoadedKey checks if a service instance is cached using a typed service key.
func LoadedKey[T any](c Container, key Key[T]) bool {
	return c.Loaded(key.id)
}

// InspectKey returns diagnostic information about a service using a typed service key.
func InspectKey[T any](c Container, key Key[T]) DefinitionInfo {
	return c.Inspect(key.id)
}
