// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - IndexStore: index entry persistence; the synchroniser is its only writer
//   - TypeSearcher: executes one content type's query (native or fallback)
//   - Authorizer: workspace membership checks (external collaborator)
//   - EventStore: analytics event and query-history persistence
//   - ContentStore: read-only item snapshots, used for index rebuilds
//   - ChangeFeed: content change notifications
//   - ConfigSource: current configuration (static or hot-reloaded)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
