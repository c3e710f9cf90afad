// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package signature computes the per-request authentication headers for the
Netvisor integration interface.

Every request carries a fixed set of X-Netvisor-* headers. One of them is a
MAC: the SHA-256 hex digest of the request URL and selected header values,
followed by the two secret keys, joined with '&':

	url&sender&customerId&timestamp&language&organisationId&transactionId&customerKey&partnerKey

The URL includes the query string. Query parameters must therefore be fixed
before signing, and the exact same URL must be put on the wire.

# Usage

	signer := signature.NewSigner(signature.Credentials{
	    Sender:         "my-integration",
	    CustomerID:     "XX_12345_6789",
	    CustomerKey:    customerKey,
	    PartnerID:      "Xxx_yyy",
	    PartnerKey:     partnerKey,
	    OrganizationID: "1234567-8",
	    Language:       "FI",
	})

	headers := signer.Sign("https://integration.netvisor.fi/customerlist.nv")
	headers.Apply(req.Header)

The timestamp and transaction id are generated fresh on every Sign call, so
headers must never be reused between requests.
*/
package signature
