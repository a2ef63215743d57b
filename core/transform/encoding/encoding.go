// Package encoding registers the text <-> base64 and text <-> urlencode
// converters.
package encoding

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	tkencoding "github.com/FocuswithJustin/DevToolkit/core/encoding"
	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/transform"
)

func init() {
	transform.RegisterModule("encoding", Register)
}

// Register adds the converters of this package to r.
func Register(r *transform.Registry) error {
	r.Register(&TextToBase64{transform.BaseTransformer{In: "text", Out: "base64"}})
	r.Register(&Base64ToText{transform.BaseTransformer{In: "base64", Out: "text"}})
	r.Register(&TextToURLEncoded{transform.BaseTransformer{In: "text", Out: "urlencode"}})
	r.Register(&URLEncodedToText{transform.BaseTransformer{In: "urlencode", Out: "text"}})
	return nil
}

// TextToBase64 encodes UTF-8 text as padded standard base64.
type TextToBase64 struct {
	transform.BaseTransformer
}

func (t *TextToBase64) Transform(data string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(data)), nil
}

// Base64ToText decodes strict standard base64 into UTF-8 text.
type Base64ToText struct {
	transform.BaseTransformer
}

func (t *Base64ToText) Transform(data string) (string, error) {
	decoded, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(data))
	if err != nil {
		return "", tkerrors.NewParse("base64", "", err)
	}
	if !utf8.Valid(decoded) {
		return "", tkerrors.NewParse("base64", "decoded bytes are not valid UTF-8", nil)
	}
	return string(decoded), nil
}

// TextToURLEncoded percent-encodes every byte outside the unreserved set.
type TextToURLEncoded struct {
	transform.BaseTransformer
}

func (t *TextToURLEncoded) Transform(data string) (string, error) {
	return tkencoding.PercentEncode(data), nil
}

// URLEncodedToText decodes percent escapes, leaving malformed ones as-is.
type URLEncodedToText struct {
	transform.BaseTransformer
}

func (t *URLEncodedToText) Transform(data string) (string, error) {
	return tkencoding.PercentDecode(data), nil
}
