// Package dependency orders record collections so that every record a row
// refers to appears earlier in the output than the referring row itself.
//
// The OpenMRS Initializer loads CSV rows top to bottom and resolves set
// members and answers by matching against rows it has already loaded. A
// concept that names another concept as a member or answer therefore has to
// appear *after* it in the file. This package treats a record collection as a
// directed graph (edges run from a record to each of its referents) and
// provides the four operations the export pipeline composes:
//
//   - DetectCycles: find illegal reference cycles before ordering
//   - Order: permute the collection into a legal dependency order
//   - ReachableFrom: extract the subtree reachable from a named root
//   - Exclude: drop records by key (set difference, no graph awareness)
//
// # Ordering Policy
//
// Order is deliberately not a classic Kahn/DFS topological sort. It assigns
// every record a float rank equal to its original index and repeatedly pushes
// a referring record down to just past its highest-ranked referent
// (max + 0.5) until a full pass makes no change, then stable-sorts by rank.
// The +0.5 bump avoids colliding with intervening integer ranks, so records
// that dependency constraints don't touch keep their natural database order.
// That stability matters for humans diffing consecutive exports.
//
// # Cycle Reporting
//
// A cycle in the reference graph means no legal order exists. DetectCycles
// walks the graph depth-first from every record and reports each cycle as an
// arrow-joined string such as "c --> d --> f --> c". All cycles found are
// reported in one error so the offending concepts can be fixed in a single
// pass. Cycles rediscovered from other traversal roots are suppressed with a
// substring check; this is a heuristic and is not guaranteed to collapse
// every rotation of the same cycle.
//
// # Contract
//
// All operations are pure functions of their inputs: no shared state, safe to
// call repeatedly, single-threaded. The collection must already be fully
// materialized in memory. Keys must be unique and every referent must resolve
// to a record in the same collection; anything else is malformed input and
// fails hard before any output is produced.
package dependency
