// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package netvisor is the request dispatcher of the Netvisor client.

A [Client] turns a resource name and query parameters into a signed HTTP
call, sends it through a pluggable transport and checks the status block of
the XML response.

# Client Creation

All credentials are mandatory and are checked when the client is created:

	client, err := netvisor.NewClient(&netvisor.Config{
	    IntegrationName: "my-integration",
	    CustomerID:      "XX_12345_6789",
	    CustomerKey:     os.Getenv("NETVISOR_CUSTOMER_KEY"),
	    PartnerID:       "Xxx_yyy",
	    PartnerKey:      os.Getenv("NETVISOR_PARTNER_KEY"),
	    OrganizationID:  "1234567-8",
	})

Defaults: base URI https://integration.netvisor.fi, language FI, timeout
120 seconds.

# Calls

Raw mode returns the response XML untouched, after its status was checked:

	xml, err := client.Get(ctx, "customerlist.nv", netvisor.Params{}.Add("keyword", "acme"))

Parsed mode returns the payload as an xmlcodec node with the status block
removed:

	payload, err := client.GetNode(ctx, "getcustomer.nv", netvisor.Params{}.Add("id", "42"))

# Errors

Every failure is one of [*ConfigError], [*TransportError],
[*ProtocolError] or [*RemoteError]. None of them is retried. A failed call
never returns a payload.
*/
package netvisor
