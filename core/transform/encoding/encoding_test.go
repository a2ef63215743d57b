package encoding

import (
	"errors"
	"testing"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/transform"
)

func newRegistry(t *testing.T) *transform.Registry {
	t.Helper()
	r := transform.New()
	if err := Register(r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return r
}

func TestConversions(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		in, out string
		input   string
		want    string
	}{
		{"text", "base64", "hello", "aGVsbG8="},
		{"base64", "text", "aGVsbG8=", "hello"},
		{"base64", "text", "aGVsbG8=\n", "hello"},
		{"text", "base64", "", ""},
		{"text", "urlencode", "a b", "a%20b"},
		{"text", "urlencode", "x=1&y=2/3", "x%3D1%26y%3D2%2F3"},
		{"urlencode", "text", "a%20b", "a b"},
		{"urlencode", "text", "50%+off", "50%+off"},
	}

	for _, tt := range tests {
		t.Run(tt.in+"->"+tt.out+":"+tt.input, func(t *testing.T) {
			got, err := r.Transform(tt.input, tt.in, tt.out)
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Transform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBase64RoundTrip(t *testing.T) {
	r := newRegistry(t)
	for _, s := range []string{"hello", "日本語", "line1\nline2"} {
		encoded, err := r.Transform(s, "text", "base64")
		if err != nil {
			t.Fatalf("encode %q: %v", s, err)
		}
		decoded, err := r.Transform(encoded, "base64", "text")
		if err != nil {
			t.Fatalf("decode %q: %v", encoded, err)
		}
		if decoded != s {
			t.Errorf("round trip of %q = %q", s, decoded)
		}
	}
}

func TestBase64Invalid(t *testing.T) {
	r := newRegistry(t)

	for _, input := range []string{"%%notbase64%%", "aGVsbG8", "/w=="} {
		_, err := r.Transform(input, "base64", "text")
		if err == nil {
			t.Errorf("Transform(%q) should fail", input)
			continue
		}
		if !errors.Is(err, tkerrors.ErrInvalidInput) && !errors.As(err, new(*tkerrors.ParseError)) {
			t.Errorf("Transform(%q) error = %v, want a parse error", input, err)
		}
	}
}
