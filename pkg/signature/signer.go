// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package signature

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

// Header names used by the Netvisor integration interface
const (
	HeaderSender         = "X-Netvisor-Authentication-Sender"
	HeaderCustomerID     = "X-Netvisor-Authentication-CustomerId"
	HeaderPartnerID      = "X-Netvisor-Authentication-PartnerId"
	HeaderTimestamp      = "X-Netvisor-Authentication-Timestamp"
	HeaderTransactionID  = "X-Netvisor-Authentication-TransactionId"
	HeaderLanguage       = "X-Netvisor-Interface-Language"
	HeaderOrganizationID = "X-Netvisor-Organisation-ID"
	HeaderMAC            = "X-Netvisor-Authentication-MAC"
	HeaderMACAlgorithm   = "X-Netvisor-Authentication-MACHashCalculationAlgorithm"
	HeaderContentType    = "Content-Type"
)

const (
	// AlgorithmSHA256 is the only MAC algorithm the service accepts
	AlgorithmSHA256 = "SHA256"

	// ContentTypeXML is sent with every request
	ContentTypeXML = "text/xml"

	// TimestampLayout is the wire format of the timestamp header (local time)
	TimestampLayout = "2006-01-02 15:04:05.000"

	// TransactionIDLength is the number of hex characters in a transaction id
	TransactionIDLength = 16
)

// Credentials identify the integration, the customer and the partner
type Credentials struct {
	Sender         string
	CustomerID     string
	CustomerKey    string
	PartnerID      string
	PartnerKey     string
	OrganizationID string
	Language       string
}

// AuthHeaders is the header set for a single request
type AuthHeaders struct {
	Sender         string
	CustomerID     string
	PartnerID      string
	Timestamp      string
	TransactionID  string
	Language       string
	OrganizationID string
	MAC            string
	MACAlgorithm   string
}

// HeaderField is one name/value pair of AuthHeaders
type HeaderField struct {
	Name  string
	Value string
}

// Fields returns the headers in their fixed wire order, Content-Type last.
func (h AuthHeaders) Fields() []HeaderField {
	return []HeaderField{
		{HeaderSender, h.Sender},
		{HeaderCustomerID, h.CustomerID},
		{HeaderPartnerID, h.PartnerID},
		{HeaderTimestamp, h.Timestamp},
		{HeaderTransactionID, h.TransactionID},
		{HeaderLanguage, h.Language},
		{HeaderOrganizationID, h.OrganizationID},
		{HeaderMAC, h.MAC},
		{HeaderMACAlgorithm, h.MACAlgorithm},
		{HeaderContentType, ContentTypeXML},
	}
}

// Apply sets all fields on hdr, replacing existing values
func (h AuthHeaders) Apply(hdr http.Header) {
	for _, f := range h.Fields() {
		hdr.Set(f.Name, f.Value)
	}
}

// Option configures a Signer
type Option func(*Signer)

// WithClock replaces the time source used for the timestamp header
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// WithTransactionIDs replaces the transaction id generator
func WithTransactionIDs(next func() string) Option {
	return func(s *Signer) {
		s.nextID = next
	}
}

// Signer produces AuthHeaders for a fixed set of credentials.
// A Signer holds no per-request state and is safe for concurrent use.
type Signer struct {
	creds  Credentials
	now    func() time.Time
	nextID func() string
}

// NewSigner creates a signer. Credentials are assumed to be validated.
func NewSigner(creds Credentials, opts ...Option) *Signer {
	s := &Signer{
		creds:  creds,
		now:    time.Now,
		nextID: NewTransactionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign builds the header set for a request to fullURL.
// fullURL must already contain the query string that will be sent.
func (s *Signer) Sign(fullURL string) AuthHeaders {
	h := AuthHeaders{
		Sender:         s.creds.Sender,
		CustomerID:     s.creds.CustomerID,
		PartnerID:      s.creds.PartnerID,
		Timestamp:      FormatTimestamp(s.now()),
		TransactionID:  s.nextID(),
		Language:       s.creds.Language,
		OrganizationID: s.creds.OrganizationID,
		MACAlgorithm:   AlgorithmSHA256,
	}
	h.MAC = ComputeMAC(fullURL, h, s.creds.CustomerKey, s.creds.PartnerKey)
	return h
}

// ComputeMAC returns the lower-case hex SHA-256 digest over the signed
// material. The order of the joined values is fixed by the service.
func ComputeMAC(fullURL string, h AuthHeaders, customerKey, partnerKey string) string {
	material := strings.Join([]string{
		fullURL,
		h.Sender,
		h.CustomerID,
		h.Timestamp,
		h.Language,
		h.OrganizationID,
		h.TransactionID,
		customerKey,
		partnerKey,
	}, "&")

	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// FormatTimestamp formats t in local time with millisecond precision
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// NewTransactionID returns 16 hex characters from crypto/rand
func NewTransactionID() string {
	b := make([]byte, TransactionIDLength/2)
	// crypto/rand.Read never returns an error since Go 1.24
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
