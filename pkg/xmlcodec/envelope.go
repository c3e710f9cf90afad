package xmlcodec

import (
	"fmt"
	"strings"
)

// Envelope element names, lower-cased as Parse yields them
const (
	keyResponseStatus = "responsestatus"
	keyStatus         = "status"
	keyTimestamp      = "timestamp"

	// StatusOK is the status of an accepted request
	StatusOK = "OK"
)

// StatusError is a response whose status block is not OK.
// Status is the first status element (e.g. "FAILED"); Detail is the text
// of the following status element verbatim. Code and Message are Detail
// split on the service's " :: " separator, when present.
type StatusError struct {
	Status    string
	Code      string
	Message   string
	Detail    string
	Timestamp string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("netvisor status %s", e.Status)
	}
	return fmt.Sprintf("netvisor status %s: %s", e.Status, e.Detail)
}

// EnvelopeError is a well-formed document without the response envelope
type EnvelopeError struct {
	Reason string
}

func (e *EnvelopeError) Error() string {
	return "invalid response envelope: " + e.Reason
}

// Decode parses a Netvisor response and checks its status block.
// On OK the payload (the root's children minus the status block) is
// returned. Otherwise the error is a *StatusError and no payload is
// returned. Malformed XML yields *SyntaxError, a missing envelope
// *EnvelopeError.
func Decode(data []byte) (*Node, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	rootName := doc.Keys()[0]
	root, ok := doc.Child(rootName)
	if !ok {
		return nil, &EnvelopeError{Reason: fmt.Sprintf("root <%s> has no child elements", rootName)}
	}

	if err := CheckStatus(root); err != nil {
		return nil, err
	}

	payload := NewNode()
	root.Range(func(key string, v Value) bool {
		if key != keyResponseStatus {
			payload.entries = append(payload.entries, entry{key: key, value: v})
		}
		return true
	})
	return payload, nil
}

// CheckStatus inspects the ResponseStatus block of a decoded root node
func CheckStatus(root *Node) error {
	block, ok := root.Child(keyResponseStatus)
	if !ok {
		return &EnvelopeError{Reason: "missing ResponseStatus"}
	}

	statuses := block.Sequence(keyStatus)
	if len(statuses) == 0 {
		return &EnvelopeError{Reason: "missing ResponseStatus/Status"}
	}

	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		text, ok := TextOf(s)
		if !ok {
			return &EnvelopeError{Reason: "ResponseStatus/Status is not text"}
		}
		parts = append(parts, text)
	}

	status := strings.TrimSpace(parts[0])
	if strings.EqualFold(status, StatusOK) {
		return nil
	}

	// Detail keeps the service's texts as sent
	serr := &StatusError{
		Status: status,
		Detail: strings.Join(parts[1:], " "),
	}
	serr.Timestamp, _ = block.Text(keyTimestamp)
	if code, msg, found := strings.Cut(serr.Detail, "::"); found {
		serr.Code = strings.TrimSpace(code)
		serr.Message = strings.TrimSpace(msg)
	} else {
		serr.Message = strings.TrimSpace(serr.Detail)
	}
	return serr
}
