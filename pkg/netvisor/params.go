package netvisor

import (
	"net/url"
	"strings"
)

// Param is one query parameter
type Param struct {
	Key   string
	Value string
}

// Params are query parameters in the order they will be signed and sent
type Params []Param

// Add returns p with key=value appended
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// AddIf appends key=value only when value is not empty
func (p Params) AddIf(key, value string) Params {
	if value == "" {
		return p
	}
	return p.Add(key, value)
}

// Encode returns the canonical query string: escaped key=value pairs
// joined by '&', in order. The same string is signed and sent.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.Value))
	}
	return sb.String()
}
