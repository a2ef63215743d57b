// Package textcase registers the text -> upper, lower and title converters.
package textcase

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FocuswithJustin/DevToolkit/core/transform"
)

func init() {
	transform.RegisterModule("textcase", Register)
}

// Register adds the converters of this package to r.
func Register(r *transform.Registry) error {
	r.Register(transform.NewFunc("text", "upper", caser(func() cases.Caser { return cases.Upper(language.Und) })))
	r.Register(transform.NewFunc("text", "lower", caser(func() cases.Caser { return cases.Lower(language.Und) })))
	r.Register(transform.NewFunc("text", "title", caser(func() cases.Caser { return cases.Title(language.Und) })))
	return nil
}

// caser builds a converter function. A cases.Caser keeps state between
// calls, so every conversion gets a fresh one.
func caser(newCaser func() cases.Caser) func(string) (string, error) {
	return func(s string) (string, error) {
		return newCaser().String(s), nil
	}
}
