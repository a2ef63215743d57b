// Package bits registers converters between text, bit-strings, hex and
// base64.
//
// A bit-string is the textual binary form of bytes: eight 0/1 characters
// per byte separated by single spaces, for example "01101000 01101001".
package bits

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/transform"
)

func init() {
	transform.RegisterModule("bits", Register)
}

// Register adds the converters of this package to r.
func Register(r *transform.Registry) error {
	conversions := []struct {
		in, out string
		fn      func(string) (string, error)
	}{
		{"text", "binary", func(s string) (string, error) { return EncodeBits([]byte(s)), nil }},
		{"binary", "text", func(s string) (string, error) { return decodeBitsToText(s) }},
		{"text", "hex", func(s string) (string, error) { return hex.EncodeToString([]byte(s)), nil }},
		{"hex", "text", hexToText},
		{"binary", "base64", binaryToBase64},
		{"base64", "binary", base64ToBinary},
		{"binary", "hex", binaryToHex},
		{"hex", "binary", hexToBinary},
	}

	for _, c := range conversions {
		r.Register(transform.NewFunc(c.in, c.out, c.fn))
	}
	return nil
}

// EncodeBits renders data as a space-separated bit-string.
func EncodeBits(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 9)
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		for bit := 7; bit >= 0; bit-- {
			if c&(1<<uint(bit)) != 0 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

// DecodeBits parses a bit-string. Whitespace is ignored and the digits are
// left-padded with zeros to a whole number of bytes, so "1010" is 0x0a.
func DecodeBits(s string) ([]byte, error) {
	var digits strings.Builder
	for _, r := range s {
		switch {
		case r == '0' || r == '1':
			digits.WriteRune(r)
		case unicode.IsSpace(r):
		default:
			return nil, tkerrors.NewParse("binary", "only 0 and 1 are allowed", nil)
		}
	}

	compact := digits.String()
	if compact == "" {
		return nil, tkerrors.NewParse("binary", "no bits found", nil)
	}
	if rem := len(compact) % 8; rem != 0 {
		compact = strings.Repeat("0", 8-rem) + compact
	}

	out := make([]byte, len(compact)/8)
	for i := range out {
		var c byte
		for _, d := range compact[i*8 : i*8+8] {
			c = c<<1 | byte(d-'0')
		}
		out[i] = c
	}
	return out, nil
}

func decodeHex(s string) ([]byte, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, tkerrors.NewParse("hex", "", err)
	}
	return data, nil
}

func toText(data []byte, from string) (string, error) {
	if !utf8.Valid(data) {
		return "", tkerrors.NewParse(from, "decoded bytes are not valid UTF-8 text", nil)
	}
	return string(data), nil
}

func decodeBitsToText(s string) (string, error) {
	data, err := DecodeBits(s)
	if err != nil {
		return "", err
	}
	return toText(data, "binary")
}

func hexToText(s string) (string, error) {
	data, err := decodeHex(s)
	if err != nil {
		return "", err
	}
	return toText(data, "hex")
}

func binaryToBase64(s string) (string, error) {
	data, err := DecodeBits(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func base64ToBinary(s string) (string, error) {
	data, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", tkerrors.NewParse("base64", "", err)
	}
	return EncodeBits(data), nil
}

func binaryToHex(s string) (string, error) {
	data, err := DecodeBits(s)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

func hexToBinary(s string) (string, error) {
	data, err := decodeHex(s)
	if err != nil {
		return "", err
	}
	return EncodeBits(data), nil
}
