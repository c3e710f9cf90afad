package xmlcodec

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// SyntaxError reports a document that is not well-formed XML
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed XML: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse reads data into a node holding a single entry: the lower-cased root
// element name mapped to its decoded value. Documents declared as
// ISO-8859-1 (or any other IANA charset) are transcoded to UTF-8.
func Parse(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &SyntaxError{Err: fmt.Errorf("no root element")}
	}

	return NewNode().Set(strings.ToLower(root.Tag), elementValue(root)), nil
}

func elementValue(el *etree.Element) Value {
	var v Value
	children := el.ChildElements()
	if len(children) == 0 {
		v = Text(charData(el))
	} else {
		n := NewNode()
		for _, c := range children {
			n.Append(strings.ToLower(c.Tag), elementValue(c))
		}
		v = n
	}

	var attrs []Attr
	for _, a := range el.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs = append(attrs, Attr{Name: strings.ToLower(a.Key), Value: a.Value})
	}
	if len(attrs) > 0 {
		return &Tagged{Value: v, Attr: attrs}
	}
	return v
}

// charData concatenates all text and CDATA tokens directly under el
func charData(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}
