package dependency

import (
	"errors"
	"strings"
	"testing"

	"github.com/PIH/iniz-exporters/internal/record"
)

const testKey = record.KeyFullySpecifiedNameEN

// rec builds a test record with the given key, members, and answers.
func rec(key, members, answers string) record.Record {
	return record.Record{
		testKey:             key,
		record.FieldMembers: members,
		record.FieldAnswers: answers,
	}
}

// keysOf extracts key values in collection order.
func keysOf(records []record.Record) []string {
	return record.Keys(records, testKey)
}

// indexOf returns the position of key in keys, failing the test if absent.
func indexOf(t *testing.T, keys []string, key string) int {
	t.Helper()
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	t.Fatalf("key %q not found in %v", key, keys)
	return -1
}

func TestOrderMovesReferrersBelowReferents(t *testing.T) {
	// a refers to b and c, which both refer to d and e.
	records := []record.Record{
		rec("a", "b;c", ""),
		rec("b", "d;e", ""),
		rec("c", "", "d;e"),
		rec("d", "", ""),
		rec("e", "", ""),
	}

	ordered, err := Order(records, testKey)
	if err != nil {
		t.Fatalf("Order() returned error: %v", err)
	}
	if len(ordered) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(ordered))
	}

	keys := keysOf(ordered)
	for referrer, referents := range map[string][]string{
		"a": {"b", "c"},
		"b": {"d", "e"},
		"c": {"d", "e"},
	} {
		for _, referent := range referents {
			if indexOf(t, keys, referent) >= indexOf(t, keys, referrer) {
				t.Errorf("expected %q before %q, got order %v", referent, referrer, keys)
			}
		}
	}
}

func TestOrderPreservesUnconstrainedInputOrder(t *testing.T) {
	// No record refers to any other: the order must not change at all.
	records := []record.Record{
		rec("x", "", ""),
		rec("m", "", ""),
		rec("a", "", ""),
	}

	ordered, err := Order(records, testKey)
	if err != nil {
		t.Fatalf("Order() returned error: %v", err)
	}
	got := keysOf(ordered)
	want := []string{"x", "m", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOrderIsIdempotent(t *testing.T) {
	records := []record.Record{
		rec("a", "b;c", ""),
		rec("b", "d;e", ""),
		rec("c", "", "d;e"),
		rec("d", "", ""),
		rec("e", "", ""),
	}

	once, err := Order(records, testKey)
	if err != nil {
		t.Fatalf("first Order() returned error: %v", err)
	}
	twice, err := Order(once, testKey)
	if err != nil {
		t.Fatalf("second Order() returned error: %v", err)
	}

	first, second := keysOf(once), keysOf(twice)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not a fixed point: %v then %v", first, second)
		}
	}
}

func TestOrderDiamondIsNotACycle(t *testing.T) {
	// b and c share referent d; sharing must not be mistaken for a cycle.
	records := []record.Record{
		rec("a", "b;c", ""),
		rec("b", "d", ""),
		rec("c", "d", ""),
		rec("d", "", ""),
	}

	cycles, err := DetectCycles(records, testKey)
	if err != nil {
		t.Fatalf("DetectCycles() returned error: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles in a diamond, got %v", cycles)
	}

	ordered, err := Order(records, testKey)
	if err != nil {
		t.Fatalf("Order() returned error: %v", err)
	}
	keys := keysOf(ordered)
	for _, referrer := range []string{"a", "b", "c"} {
		if indexOf(t, keys, "d") >= indexOf(t, keys, referrer) {
			t.Errorf("expected d before %q, got %v", referrer, keys)
		}
	}
	if indexOf(t, keys, "b") >= indexOf(t, keys, "a") || indexOf(t, keys, "c") >= indexOf(t, keys, "a") {
		t.Errorf("expected b and c before a, got %v", keys)
	}
}

func TestOrderRejectsCyclicInput(t *testing.T) {
	records := []record.Record{
		rec("a", "b", ""),
		rec("b", "a", ""),
	}

	_, err := Order(records, testKey)
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}

func TestOrderUnknownReferent(t *testing.T) {
	records := []record.Record{
		rec("a", "ghost", ""),
	}

	_, err := Order(records, testKey)
	var unknownErr *UnknownReferentError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected *UnknownReferentError, got %v", err)
	}
	if unknownErr.Key != "ghost" || unknownErr.Referrer != "a" {
		t.Errorf("unexpected error detail: key=%q referrer=%q", unknownErr.Key, unknownErr.Referrer)
	}
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name    string
		records []record.Record
		want    []string
	}{
		{
			name: "acyclic chain",
			records: []record.Record{
				rec("a", "b;c", ""),
				rec("b", "d;e", ""),
				rec("c", "", "d;e"),
				rec("d", "", ""),
				rec("e", "", ""),
			},
			want: nil,
		},
		{
			name: "three cycle reported once",
			records: []record.Record{
				rec("c", "d;e", ""),
				rec("d", "e;f", ""),
				rec("e", "", ""),
				rec("f", "c;e", ""),
			},
			want: []string{"c --> d --> f --> c"},
		},
		{
			name: "self loop",
			records: []record.Record{
				rec("a", "a", ""),
			},
			want: []string{"a --> a"},
		},
		{
			name: "two independent cycles reported together",
			records: []record.Record{
				rec("a", "b", ""),
				rec("b", "a", ""),
				rec("x", "", "y"),
				rec("y", "", "x"),
			},
			want: []string{"a --> b --> a", "x --> y --> x"},
		},
		{
			name:    "empty collection",
			records: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles, err := DetectCycles(tt.records, testKey)
			if err != nil {
				t.Fatalf("DetectCycles() returned error: %v", err)
			}
			if len(cycles) != len(tt.want) {
				t.Fatalf("expected cycles %v, got %v", tt.want, cycles)
			}
			for i := range tt.want {
				if cycles[i] != tt.want[i] {
					t.Errorf("cycle %d: expected %q, got %q", i, tt.want[i], cycles[i])
				}
			}
		})
	}
}

func TestDetectCyclesFreshStatePerCall(t *testing.T) {
	records := []record.Record{
		rec("a", "a", ""),
	}

	for i := 0; i < 3; i++ {
		cycles, err := DetectCycles(records, testKey)
		if err != nil {
			t.Fatalf("call %d returned error: %v", i, err)
		}
		if len(cycles) != 1 {
			t.Fatalf("call %d: expected 1 cycle, got %v", i, cycles)
		}
	}
}

func TestReachableFrom(t *testing.T) {
	records := []record.Record{
		rec("a", "b;c", ""),
		rec("b", "d;e", ""),
		rec("c", "", "d;e"),
		rec("d", "", ""),
		rec("e", "", ""),
	}

	tests := []struct {
		name string
		root string
		want []string
	}{
		{name: "mid tree", root: "b", want: []string{"b", "d", "e"}},
		{name: "leaf", root: "d", want: []string{"d"}},
		{name: "whole tree", root: "a", want: []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ReachableFrom(records, tt.root, testKey)
			if err != nil {
				t.Fatalf("ReachableFrom() returned error: %v", err)
			}
			got := keysOf(tree)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			members := make(map[string]bool, len(got))
			for _, k := range got {
				members[k] = true
			}
			for _, k := range tt.want {
				if !members[k] {
					t.Errorf("expected %q in result %v", k, got)
				}
			}
			// Closed under one more hop: no referent escapes the result.
			for _, r := range tree {
				for _, ref := range r.Referents() {
					if !members[ref] {
						t.Errorf("record %q has referent %q outside the result", r.Key(testKey), ref)
					}
				}
			}
		})
	}
}

func TestReachableFromDiamondVisitsOnce(t *testing.T) {
	records := []record.Record{
		rec("a", "b;c", ""),
		rec("b", "d", ""),
		rec("c", "d", ""),
		rec("d", "", ""),
	}

	tree, err := ReachableFrom(records, "a", testKey)
	if err != nil {
		t.Fatalf("ReachableFrom() returned error: %v", err)
	}
	if len(tree) != 4 {
		t.Fatalf("expected 4 records, got %d: %v", len(tree), keysOf(tree))
	}
}

func TestReachableFromUnknownRoot(t *testing.T) {
	records := []record.Record{
		rec("a", "", ""),
	}

	_, err := ReachableFrom(records, "ghost", testKey)
	var unknownErr *UnknownReferentError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected *UnknownReferentError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the missing key: %v", err)
	}
}

func TestExclude(t *testing.T) {
	records := []record.Record{
		rec("a", "", ""),
		rec("b", "", ""),
		rec("c", "", ""),
	}

	t.Run("removes matching keys", func(t *testing.T) {
		kept := Exclude(records, []string{"b"}, testKey)
		got := keysOf(kept)
		if len(got) != 2 || got[0] != "a" || got[1] != "c" {
			t.Fatalf("expected [a c], got %v", got)
		}
	})

	t.Run("empty key set is identity", func(t *testing.T) {
		kept := Exclude(records, nil, testKey)
		if len(kept) != len(records) {
			t.Fatalf("expected all %d records, got %d", len(records), len(kept))
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Exclude(records, []string{"a"}, testKey)
		twice := Exclude(once, []string{"a"}, testKey)
		if len(once) != len(twice) {
			t.Fatalf("second exclude changed the result: %v vs %v", keysOf(once), keysOf(twice))
		}
	})
}

func TestCycleErrorListsAllCycles(t *testing.T) {
	err := &CycleError{Cycles: []string{"a --> b --> a", "x --> y --> x"}}
	msg := err.Error()
	if !strings.Contains(msg, "a --> b --> a") || !strings.Contains(msg, "x --> y --> x") {
		t.Fatalf("error message should list every cycle: %q", msg)
	}
	if !strings.Contains(msg, "\n\ta --> b --> a") {
		t.Fatalf("cycles should be tab-indented, one per line: %q", msg)
	}
}
