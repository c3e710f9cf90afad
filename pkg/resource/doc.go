// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package resource maps Netvisor resources to Go types.
//
// Each resource is mapped in two explicit stages: a response is decoded into
// an xmlcodec node tree by the dispatcher, then converted field by field into
// a declared struct. Request bodies go the other way, struct to node tree to
// XML. Field names on the wire are lower-cased by the codec.
//
// Money amounts use shopspring/decimal and are written with a comma
// separator. Optional amounts are decimal.NullDecimal and optional scalars
// are pointers, so an omitted element and an empty one are told apart from
// zero values.
//
//	svc := resource.NewService(client)
//	customers, err := svc.ListCustomers(ctx, "acme")
package resource
