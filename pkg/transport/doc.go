// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the HTTP transport used by the Netvisor client.

The client core depends only on the [Transport] interface; [HTTPSClient] is
the default implementation on top of net/http with a keep-alive connection
pool and TLS 1.2/1.3.

# TLS Configuration

The package recommends TLS 1.3 with fallback to TLS 1.2:

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

# DNS Caching

An optional [Dialer], typically a *dnscache.Cache, replaces the default
dialer so host names are resolved through a shared cache:

	cache, _ := dnscache.New(dnscache.Config{})
	client := transport.NewHTTPSClient(&transport.HTTPSConfig{
	    Timeout: 2 * time.Minute,
	    Dialer:  cache,
	})

# Errors

A response with a non-2xx status is returned as [*StatusError] and its body
is not interpreted. Network failures and timeouts are returned wrapped.
*/
package transport
