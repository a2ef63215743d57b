// Package detect classifies input data by format.
package detect

import (
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/DevToolkit/core/xml"
)

// Format names returned by the detector.
const (
	Empty   = "empty"
	URL     = "url"
	JSON    = "json"
	XML     = "xml"
	Binary  = "binary"
	Hex     = "hex"
	Base64  = "base64"
	Text    = "text"
	YAML    = "yaml"
	HTML    = "html"
	Image   = "image"
	Unknown = "unknown"
)

var extensions = map[string]string{
	".json": JSON,
	".xml":  XML,
	".yaml": YAML,
	".yml":  YAML,
	".txt":  Text,
	".html": HTML,
	".htm":  HTML,
	".png":  Image,
	".jpg":  Image,
	".jpeg": Image,
	".gif":  Image,
}

// FromPath classifies a file by its extension only.
func FromPath(path string) string {
	if format, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return Unknown
}

// FromText classifies raw text. Checks run in a fixed order and the first
// match wins: url, json, xml, binary, hex, base64, then text.
func FromText(data string) string {
	s := strings.TrimSpace(data)
	if s == "" {
		return Empty
	}

	switch {
	case IsURL(s):
		return URL
	case IsJSON(s):
		return JSON
	case IsXML(s):
		return XML
	case IsBinary(s):
		return Binary
	case IsHex(s):
		return Hex
	case IsBase64(s):
		return Base64
	}
	return Text
}

// IsURL reports whether s is an http or https URL with a non-empty
// authority. Only the scheme and the "//authority" prefix are checked, so
// trailing text after the host does not disqualify s.
func IsURL(s string) bool {
	s = strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
	default:
		return false
	}
	authority, ok := strings.CutPrefix(rest, "//")
	if !ok {
		return false
	}
	if i := strings.IndexAny(authority, "/?#"); i >= 0 {
		authority = authority[:i]
	}
	return authority != ""
}

// IsJSON reports whether s parses as a JSON value.
func IsJSON(s string) bool {
	return json.Valid([]byte(s))
}

// IsXML reports whether s is a well-formed XML document.
func IsXML(s string) bool {
	return xml.Validate([]byte(s)).Valid
}

// IsBinary reports whether s is a bit-string: only 0, 1 and whitespace, with
// a digit count that is a multiple of 8.
func IsBinary(s string) bool {
	n := 0
	for _, r := range s {
		switch {
		case r == '0' || r == '1':
			n++
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return n > 0 && n%8 == 0
}

// IsHex reports whether s, with spaces removed, is an even-length run of
// hex digits.
func IsHex(s string) bool {
	compact := strings.ReplaceAll(s, " ", "")
	if compact == "" || len(compact)%2 != 0 {
		return false
	}
	for i := 0; i < len(compact); i++ {
		c := compact[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// IsBase64 reports whether s is strictly padded standard base64 that decodes
// to non-empty UTF-8.
func IsBase64(s string) bool {
	decoded, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil || len(decoded) == 0 {
		return false
	}
	return utf8.Valid(decoded)
}
