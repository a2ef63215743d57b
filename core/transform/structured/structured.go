// Package structured registers the json <-> xml converters.
//
// JSON to XML wraps the document in <root>: object keys become child
// elements, array items become <item> elements and scalars become text
// (null becomes empty text). XML to JSON maps each leaf element to its text
// and each parent to an object of its children, folding repeated child tags
// into a list. Attributes are not carried over. Object key order is kept in
// both directions.
package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/DevToolkit/core/encoding"
	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/transform"
	"github.com/FocuswithJustin/DevToolkit/core/xml"
)

func init() {
	transform.RegisterModule("structured", Register)
}

// Register adds the converters of this package to r.
func Register(r *transform.Registry) error {
	r.Register(transform.NewFunc("json", "xml", JSONToXML))
	r.Register(transform.NewFunc("xml", "json", XMLToJSON))
	return nil
}

// JSONToXML converts a JSON document into an XML element tree rooted at
// <root>. No XML declaration is written.
func JSONToXML(data string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var buf bytes.Buffer
	if err := writeValue(&buf, dec, "root"); err != nil {
		return "", err
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", tkerrors.NewParse("JSON", "", errors.New("trailing data after JSON value"))
	}
	return buf.String(), nil
}

func invalidJSON(err error) error {
	return tkerrors.NewParse("JSON", "", err)
}

// writeValue reads the next JSON value from dec and writes it as element tag.
func writeValue(buf *bytes.Buffer, dec *json.Decoder, tag string) error {
	tok, err := dec.Token()
	if err != nil {
		return invalidJSON(err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return writeObject(buf, dec, tag)
		case '[':
			return writeArray(buf, dec, tag)
		default:
			return invalidJSON(fmt.Errorf("unexpected %q", v))
		}
	case nil:
		writeLeaf(buf, tag, "")
	case string:
		writeLeaf(buf, tag, v)
	case json.Number:
		writeLeaf(buf, tag, v.String())
	case bool:
		if v {
			writeLeaf(buf, tag, "true")
		} else {
			writeLeaf(buf, tag, "false")
		}
	}
	return nil
}

func writeObject(buf *bytes.Buffer, dec *json.Decoder, tag string) error {
	var inner bytes.Buffer
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return invalidJSON(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return invalidJSON(fmt.Errorf("object key must be a string"))
		}
		if !validElementName(key) {
			return tkerrors.NewParse("JSON", fmt.Sprintf("key %q is not a valid XML element name", key), nil)
		}
		if err := writeValue(&inner, dec, key); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return invalidJSON(err)
	}
	writeElement(buf, tag, inner.Bytes())
	return nil
}

func writeArray(buf *bytes.Buffer, dec *json.Decoder, tag string) error {
	var inner bytes.Buffer
	for dec.More() {
		if err := writeValue(&inner, dec, "item"); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return invalidJSON(err)
	}
	writeElement(buf, tag, inner.Bytes())
	return nil
}

func writeElement(buf *bytes.Buffer, tag string, inner []byte) {
	if len(inner) == 0 {
		fmt.Fprintf(buf, "<%s/>", tag)
		return
	}
	fmt.Fprintf(buf, "<%s>%s</%s>", tag, inner, tag)
}

func writeLeaf(buf *bytes.Buffer, tag, text string) {
	fmt.Fprintf(buf, "<%s>%s</%s>", tag, encoding.EscapeXMLText(text), tag)
}

func validElementName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

// XMLToJSON converts an XML document into JSON of the form
// {"<root tag>": ...}.
func XMLToJSON(data string) (string, error) {
	doc, err := xml.Parse([]byte(data))
	if err != nil {
		return "", err
	}
	root := doc.Root()

	var buf bytes.Buffer
	buf.WriteString("{")
	writeJSONString(&buf, root.Name())
	buf.WriteString(": ")
	writeNode(&buf, root)
	buf.WriteString("}")
	return buf.String(), nil
}

func writeNode(buf *bytes.Buffer, n *xml.Node) {
	children := n.Children()
	if len(children) == 0 {
		writeJSONString(buf, n.Text())
		return
	}

	var order []string
	grouped := make(map[string][]*xml.Node)
	for _, c := range children {
		name := c.Name()
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], c)
	}

	buf.WriteString("{")
	for i, name := range order {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeJSONString(buf, name)
		buf.WriteString(": ")

		nodes := grouped[name]
		if len(nodes) == 1 {
			writeNode(buf, nodes[0])
			continue
		}
		buf.WriteString("[")
		for j, c := range nodes {
			if j > 0 {
				buf.WriteString(", ")
			}
			writeNode(buf, c)
		}
		buf.WriteString("]")
	}
	buf.WriteString("}")
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode on a string cannot fail.
	_ = enc.Encode(s)
	// Drop the newline Encode appends.
	buf.Truncate(buf.Len() - 1)
}
