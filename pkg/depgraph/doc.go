/*
Package depgraph provides a SQLite-backed store for the dependency edges
recorded while rendering a pod.

An edge (source, target) states that the rendered document at pod path
`source` consumed the resource at pod path `target`. Edges are idempotent:
recording the same pair twice stores it once. The store only records and
answers queries; deciding what to re-render is left to the build system.
*/
package depgraph
