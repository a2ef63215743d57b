// Package xml provides pure Go XML validation, XPath, formatting and
// minification.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities, and entity expansion is
//     explicitly disabled for every parse.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/DevToolkit/core/encoding"
	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root           *xmlquery.Node
	hasDeclaration bool
}

// Node represents an XML node (element, text, attribute, etc.).
type Node struct {
	node *xmlquery.Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

func (e ValidationError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: line %d, column %d", e.Message, e.Line, e.Column)
}

// Message returns "Valid XML" or "Invalid XML: <first error>".
func (r ValidationResult) Message() string {
	if r.Valid {
		return "Valid XML"
	}
	if len(r.Errors) == 0 {
		return "Invalid XML input"
	}
	return "Invalid XML: " + r.Errors[0].Error()
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Parse parses XML data and returns a Document. The data must be a
// well-formed document with exactly one root element.
func Parse(data []byte) (*Document, error) {
	if res := Validate(data); !res.Valid {
		return nil, tkerrors.NewParse("XML", res.Errors[0].Error(), nil)
	}

	root, err := xmlquery.ParseWithOptions(bytes.NewReader(data), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: true,
			Entity: map[string]string{},
		},
	})
	if err != nil {
		return nil, tkerrors.NewParse("XML", err.Error(), err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return &Document{root: root, hasDeclaration: bytes.HasPrefix(trimmed, []byte("<?xml"))}, nil
}

// Validate checks that data is well-formed XML with a single root element.
//
// Security: entity expansion is disabled. Go's xml.Decoder does not fetch
// external entities, and an empty Entity map leaves only the five
// predefined entities available.
func Validate(data []byte) ValidationResult {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true
	// XXE Protection (CWE-611).
	decoder.Entity = map[string]string{}

	fail := func(msg string) ValidationResult {
		line, col := decoder.InputPos()
		return ValidationResult{Errors: []ValidationError{{Line: line, Column: col, Message: msg}}}
	}

	depth := 0
	roots := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return fail(syntaxErr.Msg)
			}
			return fail(err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return fail("junk after document element")
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				if roots == 0 {
					return fail("syntax error")
				}
				return fail("junk after document element")
			}
		}
	}

	if roots == 0 {
		return fail("no element found")
	}
	return ValidationResult{Valid: true}
}

// Format formats/pretty-prints XML data. Whitespace-only text between
// elements is replaced by indentation; any other text is written unchanged
// and gets no indentation around it. An XML declaration is kept only when the
// input had one.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := &writer{buf: &buf, indent: opts.Indent, pretty: true, declaration: doc.hasDeclaration}
	w.node(doc.root, 0)
	return buf.Bytes(), nil
}

// Minify serializes XML data without whitespace-only text nodes or
// indentation. Other text is written unchanged.
func Minify(data []byte) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := &writer{buf: &buf, declaration: doc.hasDeclaration}
	w.node(doc.root, 0)
	return buf.Bytes(), nil
}

type writer struct {
	buf         *bytes.Buffer
	indent      string
	pretty      bool
	declaration bool
}

// child is an element or comment together with the text that follows it.
type child struct {
	node *xmlquery.Node
	tail []*xmlquery.Node
}

func (w *writer) name(prefix, local string) {
	if prefix != "" {
		w.buf.WriteString(prefix)
		w.buf.WriteString(":")
	}
	w.buf.WriteString(local)
}

func (w *writer) attr(prefix, local, value string) {
	w.buf.WriteString(" ")
	w.name(prefix, local)
	w.buf.WriteString("=\"")
	w.buf.WriteString(encoding.EscapeXMLAttr(value))
	w.buf.WriteString("\"")
}

// blank reports whether a text run holds nothing but whitespace. CDATA
// sections always count as content.
func blank(run []*xmlquery.Node) bool {
	for _, n := range run {
		if n.Type == xmlquery.CharDataNode || strings.TrimSpace(n.Data) != "" {
			return false
		}
	}
	return true
}

// text writes a run of text and CDATA nodes unchanged.
func (w *writer) text(run []*xmlquery.Node) {
	for _, n := range run {
		if n.Type == xmlquery.CharDataNode {
			w.buf.WriteString("<![CDATA[")
			w.buf.WriteString(n.Data)
			w.buf.WriteString("]]>")
			continue
		}
		w.buf.WriteString(encoding.EscapeXMLText(n.Data))
	}
}

// gap writes a text run between children. Whitespace-only runs are replaced
// by a newline and indentation when pretty-printing and dropped otherwise.
func (w *writer) gap(run []*xmlquery.Node, depth int) {
	if !blank(run) {
		w.text(run)
		return
	}
	if w.pretty {
		w.buf.WriteString("\n")
		w.buf.WriteString(strings.Repeat(w.indent, depth))
	}
}

// node recursively writes an XML node.
func (w *writer) node(n *xmlquery.Node, depth int) {
	switch n.Type {
	case xmlquery.DocumentNode:
		first := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.DeclarationNode:
				if !w.declaration {
					continue
				}
			case xmlquery.ElementNode, xmlquery.CommentNode:
			default:
				continue
			}
			if !first && w.pretty {
				w.buf.WriteString("\n")
			}
			first = false
			w.node(c, depth)
		}

	case xmlquery.DeclarationNode:
		w.buf.WriteString("<?xml")
		for _, a := range n.Attr {
			w.attr("", a.Name.Local, a.Value)
		}
		w.buf.WriteString("?>")

	case xmlquery.CommentNode:
		w.buf.WriteString("<!--")
		w.buf.WriteString(n.Data)
		w.buf.WriteString("-->")

	case xmlquery.ElementNode:
		w.buf.WriteString("<")
		w.name(n.Prefix, n.Data)
		for _, a := range n.Attr {
			w.attr(a.Name.Space, a.Name.Local, a.Value)
		}

		var lead []*xmlquery.Node
		var children []child
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				if len(children) == 0 {
					lead = append(lead, c)
				} else {
					children[len(children)-1].tail = append(children[len(children)-1].tail, c)
				}
			case xmlquery.ElementNode, xmlquery.CommentNode:
				children = append(children, child{node: c})
			}
		}

		if len(children) == 0 && blank(lead) {
			w.buf.WriteString("/>")
			return
		}
		w.buf.WriteString(">")

		if len(children) == 0 {
			w.text(lead)
		} else {
			w.gap(lead, depth+1)
			for i, c := range children {
				w.node(c.node, depth+1)
				if i == len(children)-1 {
					w.gap(c.tail, depth)
				} else {
					w.gap(c.tail, depth+1)
				}
			}
		}

		w.buf.WriteString("</")
		w.name(n.Prefix, n.Data)
		w.buf.WriteString(">")
	}
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPathNS executes an XPath query whose prefixes are bound through
// namespaces (prefix -> namespace URI).
func (d *Document) XPathNS(expr string, namespaces map[string]string) ([]*Node, error) {
	var (
		compiled *xpath.Expr
		err      error
	)
	if len(namespaces) > 0 {
		compiled, err = xpath.CompileWithNS(expr, namespaces)
	} else {
		compiled, err = xpath.Compile(expr)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}
