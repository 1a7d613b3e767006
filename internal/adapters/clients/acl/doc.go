// Package acl is the anti-corruption layer between the public API and the
// payment connectors.
//
// Connector DTOs are unexported and never leave this package. Every
// downstream failure is classified into an [Outcome] and rendered through a
// per-operation [Vocabulary] into a [NormalizedError], so clients see a
// stable error identifier instead of the connector's status or body.
//
// # Components
//
//   - [BaseAdapter]: embeddable request/collect/health-check plumbing
//   - [ConnectorClient]: card connector (charges and charge events)
//   - [DirectDebitClient]: direct debit connector (mandates)
//   - [Translator]: logs the real downstream response once and returns the client error
//   - [DecodeResponse]: generic decoder that translates on any decode failure
//
// # Outcomes
//
//   - downstream 404 → [OutcomeNotFound]
//   - expected status with an empty body → [OutcomeEmptyPayload]
//   - anything else, including transport errors, unexpected 2xx statuses
//     and undecodable bodies → [OutcomeConnectorError]
//
// Client-level errors ([clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded])
// are connector errors; the log line names which one occurred.
package acl
