// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package events carries read events over a watermill transport.

When read tracking uses the events sink, the read tracker publishes each
ReadEvent through a Publisher and a Router delivers it to a Consumer that
persists it to read_logs. Publishing is protected by a gobreaker circuit
breaker.

# Transports

  - gochannel: in-process pub/sub, the default
  - nats: JetStream through watermill-nats, optionally backed by an
    embedded nats-server (build with -tags=nats)

# Delivery

Messages are delivered at least once. The message UUID is the ReadEvent ID
and read_logs ignores duplicate IDs, so redelivery does not double count.
Payloads that fail to decode are acknowledged and dropped; store failures
are retried by the router and then nacked.
*/
package events
