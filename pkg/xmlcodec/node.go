package xmlcodec

// Value is a node value: Text, *Tagged, *Node or Sequence
type Value interface {
	isValue()
}

// Text is the content of an element without attributes
type Text string

// Attr is an XML attribute
type Attr struct {
	Name  string
	Value string
}

// Tagged is an element carrying attributes. Value is Text or *Node.
type Tagged struct {
	Value Value
	Attr  []Attr
}

// Sequence holds repeated sibling elements in document order
type Sequence []Value

func (Text) isValue()     {}
func (*Tagged) isValue()  {}
func (*Node) isValue()    {}
func (Sequence) isValue() {}

// NewTagged creates a tagged value
func NewTagged(v Value, attrs ...Attr) *Tagged {
	return &Tagged{Value: v, Attr: attrs}
}

// Get returns the value of the named attribute
func (t *Tagged) Get(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, a := range t.Attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

type entry struct {
	key   string
	value Value
}

// Node is an ordered mapping of element names to values.
// The zero value is an empty node ready to use.
type Node struct {
	entries []entry
}

// NewNode creates an empty node
func NewNode() *Node {
	return &Node{}
}

// Set stores v under key, replacing any existing value in place.
// New keys are appended, so insertion order is document order.
func (n *Node) Set(key string, v Value) *Node {
	for i := range n.entries {
		if n.entries[i].key == key {
			n.entries[i].value = v
			return n
		}
	}
	n.entries = append(n.entries, entry{key: key, value: v})
	return n
}

// Append adds v under key. A second value for the same key turns the
// entry into a Sequence.
func (n *Node) Append(key string, v Value) *Node {
	for i := range n.entries {
		if n.entries[i].key != key {
			continue
		}
		if seq, ok := n.entries[i].value.(Sequence); ok {
			n.entries[i].value = append(seq, v)
		} else {
			n.entries[i].value = Sequence{n.entries[i].value, v}
		}
		return n
	}
	n.entries = append(n.entries, entry{key: key, value: v})
	return n
}

// Get returns the value stored under key
func (n *Node) Get(key string) (Value, bool) {
	if n == nil {
		return nil, false
	}
	for _, e := range n.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Delete removes key and reports whether it was present
func (n *Node) Delete(key string) bool {
	if n == nil {
		return false
	}
	for i, e := range n.entries {
		if e.key == key {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys in order
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of keys
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.entries)
}

// Text returns the text under key, looking through a Tagged wrapper.
// It reports false when the key is absent or does not hold text.
func (n *Node) Text(key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return textOf(v)
}

// Child returns the node under key, looking through a Tagged wrapper
func (n *Node) Child(key string) (*Node, bool) {
	v, ok := n.Get(key)
	if !ok {
		return nil, false
	}
	return nodeOf(v)
}

// Attr returns an attribute of the tagged element under key
func (n *Node) Attr(key, name string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	t, ok := v.(*Tagged)
	if !ok {
		return "", false
	}
	return t.Get(name)
}

// Sequence returns the value under key as a sequence, see ForceSequence
func (n *Node) Sequence(key string) Sequence {
	v, _ := n.Get(key)
	return ForceSequence(v)
}

// Range calls fn for each entry in order until fn returns false
func (n *Node) Range(fn func(key string, v Value) bool) {
	if n == nil {
		return
	}
	for _, e := range n.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// ForceSequence normalizes a value that may or may not repeat.
// A sequence is returned unchanged, any other present value becomes a
// one-element sequence and an absent value yields nil.
func ForceSequence(v Value) Sequence {
	switch t := v.(type) {
	case nil:
		return nil
	case Sequence:
		return t
	case *Node:
		if t == nil {
			return nil
		}
	case *Tagged:
		if t == nil {
			return nil
		}
	}
	return Sequence{v}
}

// TextOf returns the text content of v, looking through a Tagged wrapper
func TextOf(v Value) (string, bool) {
	return textOf(v)
}

// NodeOf returns v as a node, looking through a Tagged wrapper
func NodeOf(v Value) (*Node, bool) {
	return nodeOf(v)
}

func textOf(v Value) (string, bool) {
	switch t := v.(type) {
	case Text:
		return string(t), true
	case *Tagged:
		if t == nil {
			return "", false
		}
		s, ok := t.Value.(Text)
		if ok {
			return string(s), true
		}
		// an attribute-only element decodes with empty text
		return "", t.Value == nil
	}
	return "", false
}

func nodeOf(v Value) (*Node, bool) {
	switch t := v.(type) {
	case *Node:
		return t, t != nil
	case *Tagged:
		if t == nil {
			return nil, false
		}
		c, ok := t.Value.(*Node)
		return c, ok && c != nil
	}
	return nil, false
}
