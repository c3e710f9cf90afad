// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package dnscache provides an optional DNS resolution cache for the HTTP
transport.

The cache resolves A and AAAA records with github.com/miekg/dns against a
configured server (or the first server in /etc/resolv.conf) and keeps each
answer for its record TTL, clamped to a configured range. Concurrent misses
for the same host share one lookup.

	cache, err := dnscache.New(dnscache.Config{MaxTTL: 5 * time.Minute})
	client := transport.NewHTTPSClient(&transport.HTTPSConfig{Dialer: cache})

A cache only changes latency. Requests behave the same with or without one,
and a Cache is safe for concurrent use by any number of clients.
*/
package dnscache
