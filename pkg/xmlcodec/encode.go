package xmlcodec

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
)

// Charsets supported by Encode
const (
	CharsetUTF8   = "UTF-8"
	CharsetLatin1 = "ISO-8859-1"
)

type encodeOptions struct {
	indent      int
	charset     string
	declaration bool
}

// EncodeOption configures Encode
type EncodeOption func(*encodeOptions)

// WithIndent pretty-prints the output with the given number of spaces
func WithIndent(spaces int) EncodeOption {
	return func(o *encodeOptions) {
		o.indent = spaces
	}
}

// WithCharset selects the output encoding, CharsetUTF8 or CharsetLatin1
func WithCharset(name string) EncodeOption {
	return func(o *encodeOptions) {
		o.charset = name
	}
}

// WithoutDeclaration omits the <?xml ...?> declaration
func WithoutDeclaration() EncodeOption {
	return func(o *encodeOptions) {
		o.declaration = false
	}
}

// Encode serializes n as the children of a root element named root.
func Encode(root string, n *Node, opts ...EncodeOption) ([]byte, error) {
	o := encodeOptions{charset: CharsetUTF8, declaration: true}
	for _, opt := range opts {
		opt(&o)
	}

	latin1 := false
	switch strings.ToUpper(o.charset) {
	case CharsetUTF8:
	case CharsetLatin1, "LATIN1", "LATIN-1":
		latin1 = true
	default:
		return nil, fmt.Errorf("unsupported charset %q", o.charset)
	}
	if root == "" {
		return nil, fmt.Errorf("root element name is required")
	}

	doc := etree.NewDocument()
	if o.declaration {
		doc.CreateProcInst("xml", fmt.Sprintf(`version="1.0" encoding="%s"`, o.charset))
	}
	if err := appendNode(doc.CreateElement(root), n); err != nil {
		return nil, err
	}
	if o.indent > 0 {
		doc.Indent(o.indent)
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if latin1 {
		out, err = charmap.ISO8859_1.NewEncoder().Bytes(out)
		if err != nil {
			return nil, fmt.Errorf("document not representable in %s: %w", o.charset, err)
		}
	}
	return out, nil
}

// EncodeFragment serializes the entries of n as sibling elements with no
// root element and no declaration.
func EncodeFragment(n *Node) (string, error) {
	doc := etree.NewDocument()
	if err := appendNode(&doc.Element, n); err != nil {
		return "", err
	}
	return doc.WriteToString()
}

func appendNode(parent *etree.Element, n *Node) error {
	if n == nil {
		return nil
	}
	for _, e := range n.entries {
		if err := appendValue(parent, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func appendValue(parent *etree.Element, key string, v Value) error {
	if key == "" {
		return fmt.Errorf("empty element name under <%s>", parent.Tag)
	}

	switch t := v.(type) {
	case nil:
		return nil
	case Text:
		if t == "" {
			return nil
		}
		parent.CreateElement(key).SetText(string(t))
	case *Tagged:
		if isEmpty(t) {
			return nil
		}
		el := parent.CreateElement(key)
		for _, a := range t.Attr {
			el.CreateAttr(a.Name, a.Value)
		}
		switch inner := t.Value.(type) {
		case nil:
		case Text:
			if inner != "" {
				el.SetText(string(inner))
			}
		case *Node:
			return appendNode(el, inner)
		default:
			return fmt.Errorf("element <%s>: tagged value must be text or node, got %T", key, t.Value)
		}
	case *Node:
		if t.Len() == 0 {
			return nil
		}
		return appendNode(parent.CreateElement(key), t)
	case Sequence:
		for i, item := range t {
			if _, nested := item.(Sequence); nested {
				return fmt.Errorf("element <%s>: item %d is a nested sequence", key, i)
			}
			if err := appendValue(parent, key, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("element <%s>: unsupported value type %T", key, v)
	}
	return nil
}

// isEmpty reports whether t has neither attributes nor content.
func isEmpty(t *Tagged) bool {
	if t == nil {
		return true
	}
	if len(t.Attr) > 0 {
		return false
	}
	switch inner := t.Value.(type) {
	case nil:
		return true
	case Text:
		return inner == ""
	case *Node:
		return inner.Len() == 0
	}
	return false
}
