// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package gonetvisor is a client for the Netvisor accounting integration
interface.

# Overview

Netvisor exposes its data as XML resources over HTTPS ("customerlist.nv",
"salesinvoice.nv", ...). Every request is authenticated with a set of
headers and a SHA-256 MAC computed over the full request URL, the headers
and two shared secrets. Every response is an XML document whose
ResponseStatus block says whether the call succeeded.

go-netvisor signs requests, dispatches them and translates responses to
and from Go values.

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-netvisor/pkg/netvisor  - Client, configuration and errors
	github.com/sirosfoundation/go-netvisor/pkg/signature - Authentication headers and MAC
	github.com/sirosfoundation/go-netvisor/pkg/xmlcodec  - Tagged-node XML encoding and decoding
	github.com/sirosfoundation/go-netvisor/pkg/resource  - Typed customers, products, invoices and vouchers
	github.com/sirosfoundation/go-netvisor/pkg/transport - HTTPS transport with TLS 1.2/1.3
	github.com/sirosfoundation/go-netvisor/pkg/dnscache  - Optional DNS resolution cache

The netvisor command in cmd/netvisor wraps the client for shell use.

# Quick Start

	import (
	    "github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	    "github.com/sirosfoundation/go-netvisor/pkg/resource"
	)

	client, err := netvisor.NewClient(&netvisor.Config{
	    IntegrationName: "my-integration",
	    CustomerID:      "XX_12345_6789",
	    CustomerKey:     customerKey,
	    PartnerID:       "Xxx_yyy",
	    PartnerKey:      partnerKey,
	    OrganizationID:  "1234567-8",
	})
	if err != nil {
	    return err
	}

	// Generic access: any resource, parsed into an ordered node tree
	payload, err := client.GetNode(ctx, "customerlist.nv", netvisor.Params{}.Add("keyword", "acme"))

	// Typed access
	svc := resource.NewService(client)
	customers, err := svc.ListCustomers(ctx, "acme")

# Errors

Calls fail with one of four error types from package netvisor:

  - ConfigError: invalid or missing configuration, reported by NewClient
  - TransportError: network failure, timeout, cancellation or HTTP error status
  - ProtocolError: a response that is not a Netvisor XML document
  - RemoteError: a response with a non-OK status, carrying the service's message

No call is retried.

# License

BSD-2-Clause License
*/
package gonetvisor
