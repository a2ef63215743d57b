// Package transform provides the registry of direct format converters.
//
// A converter turns data of one named format into another (for example
// "text" into "base64"). The registry holds at most one converter per
// ordered pair and never chains converters: a request for a pair with no
// registered converter fails even if a path through other formats exists.
//
// Converter packages add themselves by calling RegisterModule from an init
// function; NewRegistry runs every module registrar it knows about.
package transform

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
)

// Transformer converts data from InputType to OutputType.
type Transformer interface {
	// InputType returns the source format name.
	InputType() string

	// OutputType returns the target format name.
	OutputType() string

	// Transform converts data. It returns an error for input that is not
	// valid in the source format.
	Transform(data string) (string, error)
}

// BaseTransformer provides the type accessors for converters that embed it.
type BaseTransformer struct {
	In  string
	Out string
}

// InputType returns the source format name.
func (b BaseTransformer) InputType() string { return b.In }

// OutputType returns the target format name.
func (b BaseTransformer) OutputType() string { return b.Out }

// Func adapts a plain function into a Transformer.
type Func struct {
	BaseTransformer
	Fn func(string) (string, error)
}

// NewFunc returns a Transformer for in -> out backed by fn.
func NewFunc(in, out string, fn func(string) (string, error)) *Func {
	return &Func{BaseTransformer: BaseTransformer{In: in, Out: out}, Fn: fn}
}

// Transform calls the wrapped function.
func (f *Func) Transform(data string) (string, error) {
	return f.Fn(data)
}

// Pair is an ordered (input, output) format pair.
type Pair struct {
	Input  string
	Output string
}

func (p Pair) String() string {
	return p.Input + " -> " + p.Output
}

// NoTransformerError is returned when no converter exists for a pair.
type NoTransformerError struct {
	Pair Pair
}

func (e *NoTransformerError) Error() string {
	return fmt.Sprintf("No transformer registered for %s -> %s", e.Pair.Input, e.Pair.Output)
}

func (e *NoTransformerError) Unwrap() error {
	return tkerrors.ErrUnsupported
}

// Normalize lower-cases and trims a format name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry maps format pairs to converters.
type Registry struct {
	mu           sync.RWMutex
	transformers map[Pair]Transformer
	loadErrors   map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		transformers: make(map[Pair]Transformer),
		loadErrors:   make(map[string]string),
	}
}

// Register adds t under its normalized pair. A converter already registered
// for the same pair is replaced.
func (r *Registry) Register(t Transformer) {
	if t == nil {
		return
	}
	key := Pair{Input: Normalize(t.InputType()), Output: Normalize(t.OutputType())}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[key] = t
}

// Lookup returns the converter registered for in -> out.
func (r *Registry) Lookup(in, out string) (Transformer, bool) {
	key := Pair{Input: Normalize(in), Output: Normalize(out)}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transformers[key]
	return t, ok
}

// Transform converts data from in to out with the single registered
// converter for that pair.
func (r *Registry) Transform(data, in, out string) (string, error) {
	t, ok := r.Lookup(in, out)
	if !ok {
		return "", &NoTransformerError{Pair: Pair{Input: Normalize(in), Output: Normalize(out)}}
	}
	return t.Transform(data)
}

// Available returns the registered pairs for input sorted by input then
// output. An empty input returns every pair.
func (r *Registry) Available(input string) []Pair {
	input = Normalize(input)

	r.mu.RLock()
	pairs := make([]Pair, 0, len(r.transformers))
	for p := range r.transformers {
		if input == "" || p.Input == input {
			pairs = append(pairs, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Input != pairs[j].Input {
			return pairs[i].Input < pairs[j].Input
		}
		return pairs[i].Output < pairs[j].Output
	})
	return pairs
}

// InputTypes returns the sorted distinct input formats.
func (r *Registry) InputTypes() []string {
	seen := make(map[string]bool)
	var inputs []string
	for _, p := range r.Available("") {
		if !seen[p.Input] {
			seen[p.Input] = true
			inputs = append(inputs, p.Input)
		}
	}
	return inputs
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transformers)
}

// LoadErrors returns a copy of the module errors recorded during discovery,
// keyed by module name.
func (r *Registry) LoadErrors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.loadErrors))
	for k, v := range r.loadErrors {
		out[k] = v
	}
	return out
}

func (r *Registry) recordLoadError(module string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErrors[module] = err.Error()
}
