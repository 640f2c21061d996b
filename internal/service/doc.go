// Package service contains the application use cases: account management,
// post (listing) management, and the offer lifecycle up to and including
// trade settlement. It orchestrates domain entities and the repositories
// defined in internal/store to fulfill application features.
//
// Services own the transactional boundaries. Multi-step operations such as
// accepting an offer run entirely inside one database transaction so the
// status transitions, the sibling rejections, the trade record, and the
// post settlement land together or not at all.
//
// All authorization decisions live here too: handlers resolve the caller's
// identity, but whether that identity may edit a post or settle an offer
// is decided by the service that owns the entity.
//
// Services receive dependencies through constructor injection and depend
// on repository interfaces, never on specific infrastructure
// implementations.
package service
