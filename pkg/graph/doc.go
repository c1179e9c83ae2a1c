// Package graph defines the canonical node/edge snapshot model.
//
// A [Snapshot] is the last full {nodes, edges} set received from the
// backend for one query. It is retained as ground truth: progressive
// disclosure and local edits always recompute from the snapshot rather
// than from an already-filtered visible set.
//
// # Integrity
//
// Snapshots arrive from an external producer and are not trusted:
//
//   - Duplicate node IDs resolve last-write-wins ([Snapshot.Normalize]).
//   - Edges referencing unknown node IDs are dropped before layout.
//   - Missing roles are derived from depth ([RoleForDepth]).
//
// # Properties
//
// Node and edge property bags are open key/value maps with a typed value
// union ([Value]) so arbitrary JSON payloads survive round-trips without
// giving up type safety at the boundary.
package graph
