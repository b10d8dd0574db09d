// Package http provides HTTP handlers and middleware for the care booking API.
//
// The router exposes the following endpoints:
//   - POST /bookings: submits an array of booking requests (a single bare
//     request is also accepted), expanding any recurrence into individual
//     occurrences. The whole batch is accepted or rejected as one.
//   - GET /bookings/{id}: retrieves one booking occurrence.
//   - POST /bookings/{id}/accept|decline|cancel|complete: booking lifecycle
//     transitions. Accepting is only valid while the confirmation window is open.
//   - POST /bookings/{id}/reschedule: moves a pending or confirmed booking to a
//     new slot after re-running the availability and notice checks.
//   - GET /workers, POST /workers, GET /workers/{id}, PUT /workers/{id}: worker
//     directory endpoints exchanging the `workerDTO` payload defined in
//     worker_handler.go. Workers are never deleted.
//   - GET /workers/search: filtered directory search; see buildSearchParams for
//     the accepted query parameters.
//   - GET /workers/{id}/bookings?date=YYYY-MM-DD: a worker's bookings for one day.
//   - POST /clients, GET /clients/{id}, PUT /clients/{id}: client directory
//     endpoints exchanging the `clientDTO` payload defined in client_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
