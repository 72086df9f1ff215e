package dependency

import (
	"sort"
	"strings"

	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

// Arrow joins the keys of a cycle description, e.g. "c --> d --> f --> c".
const Arrow = " --> "

// DetectCycles walks the reference graph depth-first from every record and
// returns a description of each distinct cycle found. An empty result means
// the collection is a DAG and safe to order. The error return covers
// malformed input only (duplicate or missing keys, unresolvable referents).
//
// The visited set and traversal path are constructed fresh on every call;
// nothing is shared between invocations.
func DetectCycles(records []record.Record, key string) ([]string, error) {
	byKey, err := record.Index(records, key)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(records))
	var cycles []string

	var walk func(k string, path []string) error
	walk = func(k string, path []string) error {
		for i, p := range path {
			if p != k {
				continue
			}
			// k closes a cycle: the path from its first occurrence
			// onward, with the repeated key appended.
			cycle := strings.Join(append(append([]string{}, path[i:]...), k), Arrow)
			if !alreadyReported(cycles, cycle) {
				cycles = append(cycles, cycle)
			}
			return nil
		}
		if visited[k] {
			return nil
		}
		r, ok := byKey[k]
		if !ok {
			referrer := ""
			if len(path) > 0 {
				referrer = path[len(path)-1]
			}
			return &UnknownReferentError{Key: k, Referrer: referrer}
		}
		path = append(path, k)
		for _, ref := range r.Referents() {
			if err := walk(ref, path); err != nil {
				return err
			}
		}
		visited[k] = true
		return nil
	}

	for _, r := range records {
		if err := walk(r.Key(key), nil); err != nil {
			return nil, err
		}
	}
	return cycles, nil
}

// alreadyReported suppresses a newly found cycle when it is a substring of
// one already collected. Cycles rediscovered from a later traversal root are
// rotations or extensions of ones already reported; this check collapses the
// common cases but is not rotation-invariant in general.
func alreadyReported(cycles []string, cycle string) bool {
	for _, c := range cycles {
		if strings.Contains(c, cycle) {
			return true
		}
	}
	return false
}

// Order returns the records permuted so that every referent precedes every
// one of its referrers, using the push-down relaxation described in the
// package documentation. The input is not modified.
//
// Order re-runs cycle detection before relaxing: the relaxation loop would
// never reach a fixed point on a cyclic graph, so cyclic input is rejected
// with a *CycleError instead. Callers that want the full multi-cycle report
// up front should still run DetectCycles themselves.
func Order(records []record.Record, key string) ([]record.Record, error) {
	cycles, err := DetectCycles(records, key)
	if err != nil {
		return nil, err
	}
	if len(cycles) > 0 {
		return nil, &CycleError{Cycles: cycles}
	}

	// Ranks start at each record's index. They do not stay sequential: a
	// record that sorts after its referents is bumped to max + 0.5, which
	// places it just past the highest referent without colliding with any
	// integer rank in between.
	rank := make(map[string]float64, len(records))
	for i, r := range records {
		rank[r.Key(key)] = float64(i)
	}

	for pass := 1; ; pass++ {
		logging.Debug("Order", "Sorting: pass #%d", pass)
		bumped := false
		for _, r := range records {
			refs := r.Referents()
			if len(refs) == 0 {
				continue
			}
			maxRank := rank[refs[0]]
			for _, ref := range refs[1:] {
				if rank[ref] > maxRank {
					maxRank = rank[ref]
				}
			}
			if rank[r.Key(key)] <= maxRank {
				rank[r.Key(key)] = maxRank + 0.5
				bumped = true
			}
		}
		if !bumped {
			break
		}
	}

	ordered := make([]record.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank[ordered[i].Key(key)] < rank[ordered[j].Key(key)]
	})
	return ordered, nil
}

// ReachableFrom returns the records reachable from rootKey by following
// referent edges, root included. The result is in breadth-first discovery
// order, not input order; run Order on it if a load order is needed.
// A referent that does not resolve is a fatal lookup error, as is an
// unknown root.
func ReachableFrom(records []record.Record, rootKey, key string) ([]record.Record, error) {
	byKey, err := record.Index(records, key)
	if err != nil {
		return nil, err
	}

	// The seen set tracks everything ever enqueued so a diamond (two
	// records sharing a referent) is visited once, not requeued forever.
	seen := map[string]bool{rootKey: true}
	queue := []string{rootKey}
	var tree []record.Record

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		r, ok := byKey[k]
		if !ok {
			return nil, &UnknownReferentError{Key: k}
		}
		tree = append(tree, r)
		for _, ref := range r.Referents() {
			if !seen[ref] {
				seen[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	return tree, nil
}

// Exclude returns the records whose key is not in excludedKeys, preserving
// input order. It has no graph awareness; callers excluding whole subtrees
// compute the key set with ReachableFrom first.
func Exclude(records []record.Record, excludedKeys []string, key string) []record.Record {
	if len(excludedKeys) == 0 {
		return records
	}
	excluded := make(map[string]bool, len(excludedKeys))
	for _, k := range excludedKeys {
		excluded[k] = true
	}
	var kept []record.Record
	for _, r := range records {
		if !excluded[r.Key(key)] {
			kept = append(kept, r)
		}
	}
	return kept
}
