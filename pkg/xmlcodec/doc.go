// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package xmlcodec maps between Netvisor XML documents and an ordered,
loosely typed node tree.

# Node Model

A [Node] is an ordered mapping from element names to values. A value is one
of:

	Text      - an element with text content and no attributes
	*Tagged   - an element with attributes; its Value is Text or *Node
	*Node     - an element with child elements
	Sequence  - repeated sibling elements sharing one name

The distinction between Text and *Tagged is preserved in both directions: a
Tagged value is written with its attributes on the opening tag, a Text value
as a bare text node.

	invoice := xmlcodec.NewNode().
	    Set("SalesInvoiceDate", xmlcodec.NewTagged(xmlcodec.Text("2024-01-31"),
	        xmlcodec.Attr{Name: "format", Value: "ansi"})).
	    Set("SalesInvoiceAmount", xmlcodec.Text("124,00"))

	body, err := xmlcodec.Encode("Root", xmlcodec.NewNode().Set("SalesInvoice", invoice))

Empty values (empty Text, empty Node, nil) are omitted from the output
entirely, never written as empty elements.

# Decoding

[Parse] reads any document into the node model. Element and attribute names
are lower-cased, so lookups do not depend on the casing an endpoint happens
to use. Encoding then decoding is therefore lossy with respect to tag case.

[Decode] additionally inspects the Netvisor response envelope: if the
ResponseStatus block says OK, the block is removed and the remaining payload
is returned; otherwise a [*StatusError] is returned and the payload is
dropped.

# Repeated Elements

XML cannot tell a list of one element from a single element. Decoding yields
a Sequence only when an element actually repeats; callers iterating a field
that may repeat must go through [ForceSequence] (or [Node.Sequence]).
*/
package xmlcodec
