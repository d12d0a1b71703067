package builtins

import (
	"fmt"
	"sort"

	"bemjs/pkg/vm"
)

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		&GlobalsInitializer{},
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ArrayInitializer{},
		&StringInitializer{},
		&NumberInitializer{},
		&BooleanInitializer{},
		&RegExpInitializer{},
		&MathInitializer{},
		&JSONInitializer{},
		&ConsoleInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// Install runs every standard initializer against r, populating its
// prototypes and global scope.
func Install(r *vm.Realm) error {
	ctx := &RuntimeContext{
		Realm: r,
		DefineGlobal: func(name string, value vm.Value) error {
			r.Global.Declare(name, value)
			return nil
		},
	}
	for _, init := range GetStandardInitializers() {
		if err := init.InitRuntime(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", init.Name(), err)
		}
	}
	return nil
}

// NewRealm returns a realm with the standard builtins installed.
func NewRealm() (*vm.Realm, error) {
	r := vm.NewRealm()
	if err := Install(r); err != nil {
		return nil, err
	}
	return r, nil
}
