// Package client contains the refresh coordinator that sits between the
// application and the bare HTTP transport.
//
// # Overview
//
// Coordinator implements transport.Transport. Every request it sends carries
// the current access token from the credential store. When the backend
// answers 401, the coordinator obtains a new token from the refresh endpoint
// and replays the request once with it. Concurrent 401s share a single
// refresh call: the first one starts a refresh cycle, the others queue up
// and are released when the cycle settles. Replays reach the transport in
// the order the callers arrived, the initiator first; they may complete in
// any order.
//
// # Failure handling
//
//   - Errors other than 401, and 401s on requests that were already
//     replayed or are marked Anonymous, reach the caller unchanged.
//   - If the refresh fails for any reason, the store is cleared, every
//     caller waiting on that cycle gets its own original 401, and the
//     session-expired hook runs once.
//   - A 401 for a request sent before the previous cycle settled does not
//     start another cycle; the request is replayed with the token that cycle
//     produced, or fails with its 401 if the cycle cleared the store.
//
// # Concurrency & Contexts
//
// Coordinator is safe for concurrent use. The refresh call runs on a context
// detached from the caller that started it and bounded by the refresh
// timeout, so one caller giving up does not fail the cycle for the others.
// Queued callers stop waiting when their own context is done.
//
// See Also
//
//   - Coordinator:        NewCoordinator, Send, Refresh
//   - State transitions:  SetAuthenticated, Clear, Credential
//   - Hook:               OnSessionExpired
//   - Metrics:            NewMetrics
package client
