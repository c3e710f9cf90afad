package cmd

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Keys used for tagged elements in YAML output
const (
	attrPrefix = "@"
	contentKey = "#content"
)

// writeYAML prints a payload tree as YAML, keeping element order
func writeYAML(w io.Writer, n *xmlcodec.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nodeToYAML(n)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return enc.Close()
}

func nodeToYAML(n *xmlcodec.Node) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	n.Range(func(key string, v xmlcodec.Value) bool {
		m.Content = append(m.Content, scalar(key), valueToYAML(v))
		return true
	})
	return m
}

func valueToYAML(v xmlcodec.Value) *yaml.Node {
	switch t := v.(type) {
	case xmlcodec.Text:
		return scalar(string(t))
	case *xmlcodec.Node:
		return nodeToYAML(t)
	case xmlcodec.Sequence:
		s := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			s.Content = append(s.Content, valueToYAML(item))
		}
		return s
	case *xmlcodec.Tagged:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, a := range t.Attr {
			m.Content = append(m.Content, scalar(attrPrefix+a.Name), scalar(a.Value))
		}
		if t.Value != nil {
			m.Content = append(m.Content, scalar(contentKey), valueToYAML(t.Value))
		}
		return m
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// scalar forces string tagging so values like 00100 keep their form
func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
