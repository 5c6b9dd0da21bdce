// Package repository defines the layout store interface of stemma.
//
// The canvas engine itself never touches storage; the host service saves and
// restores domain.Layout snapshots through a LayoutStore. The implementation
// lives in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite store keeps the current version of each named layout in
// normalized tables (layouts, layout_nodes, layout_edges) so node order and
// edge order survive a round trip, and appends every save to a revision table
// as a zstd-compressed JSON document.
//
// # Testing
//
// The sqlite store is tested against in-memory databases.
package repository
