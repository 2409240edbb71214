// Package service holds the client-side session and query logic.
//
//   - session.go: Manager, the single owner of the credential and identity
//   - list.go: ListController, the filter-sort-fetch cycle behind list views
//   - detail.go: DetailLoader, translation detail with payment resolution
//   - order.go: OrderService, translation orders and payments
//
// Services depend on small interfaces over the API client and the
// credential store so they can be tested with fakes. Every operation is
// a blocking call taking a context.Context; state is guarded by mutexes.
package service
