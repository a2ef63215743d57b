package transform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/FocuswithJustin/DevToolkit/internal/logging"
)

// Registrar adds a module's converters to a registry.
type Registrar func(*Registry) error

// Global module table
var (
	modules   = make(map[string]Registrar)
	modulesMu sync.RWMutex
)

// RegisterModule records a converter module. It is meant to be called from
// package init functions. Registering the same name twice panics.
func RegisterModule(name string, fn Registrar) {
	if name == "" || fn == nil {
		panic("transform: RegisterModule requires a name and a registrar")
	}

	modulesMu.Lock()
	defer modulesMu.Unlock()

	if _, exists := modules[name]; exists {
		panic(fmt.Sprintf("transform: module %s is already registered", name))
	}
	modules[name] = fn
}

// Modules returns the registered module names in sorted order.
func Modules() []string {
	modulesMu.RLock()
	defer modulesMu.RUnlock()

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRegistry returns a registry populated by every registered module, run
// in name order. A module that fails, by returning an error or panicking, is
// recorded in LoadErrors and the remaining modules still run. Converters
// the failing module registered before the error are kept.
func NewRegistry() *Registry {
	r := New()
	for _, name := range Modules() {
		modulesMu.RLock()
		fn := modules[name]
		modulesMu.RUnlock()

		if err := runModule(r, fn); err != nil {
			logging.ConverterLoadError(name, err)
			r.recordLoadError(name, err)
		}
	}
	return r
}

func runModule(r *Registry, fn Registrar) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("registrar panicked: %v", p)
		}
	}()
	return fn(r)
}

// unregisterModule removes a module (mainly for testing)
func unregisterModule(name string) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	delete(modules, name)
}
