// Package jsontools formats, minifies and validates JSON documents.
//
// Output always has object keys sorted. Numbers are written exactly as they
// appeared in the input and non-ASCII text is not escaped.
package jsontools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
)

// DefaultIndent is the indentation used by Format.
const DefaultIndent = "  "

// ValidMessage is printed for a document that parses.
const ValidMessage = "Valid JSON"

// Format pretty-prints data with two-space indentation and sorted keys.
func Format(data []byte) ([]byte, error) {
	return FormatIndent(data, DefaultIndent)
}

// FormatIndent pretty-prints data with the given indent string.
func FormatIndent(data []byte, indent string) ([]byte, error) {
	v, err := parse(data)
	if err != nil {
		return nil, err
	}
	return encode(v, indent)
}

// Minify writes data without insignificant whitespace and with sorted keys.
func Minify(data []byte) ([]byte, error) {
	v, err := parse(data)
	if err != nil {
		return nil, err
	}
	return encode(v, "")
}

// Validate returns nil when data is a single valid JSON value. Otherwise the
// error reads "Invalid JSON: <reason> at line L, column C".
func Validate(data []byte) error {
	_, err := parse(data)
	return err
}

func parse(data []byte) (any, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, syntaxError(data, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, tkerrors.NewParse("JSON", err.Error(), err)
	}
	return v, nil
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// syntaxError converts a decoding error into a ParseError carrying the line
// and column (both 1-based, column counted in characters) of the problem.
func syntaxError(data []byte, err error) error {
	var se *json.SyntaxError
	if !errors.As(err, &se) {
		return tkerrors.NewParse("JSON", err.Error(), err)
	}

	pos := int(se.Offset)
	if se.Error() != "unexpected end of JSON input" && pos > 0 {
		pos--
	}
	if pos > len(data) {
		pos = len(data)
	}
	line, col := Position(data, pos)
	return tkerrors.NewParse("JSON", fmt.Sprintf("%s at line %d, column %d", se.Error(), line, col), err)
}

// Position returns the 1-based line and column of byte offset pos in data.
func Position(data []byte, pos int) (line, col int) {
	prefix := data[:pos]
	line = bytes.Count(prefix, []byte("\n")) + 1
	lineStart := bytes.LastIndexByte(prefix, '\n') + 1
	col = utf8.RuneCount(prefix[lineStart:]) + 1
	return line, col
}
