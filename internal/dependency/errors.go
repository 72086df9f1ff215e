package dependency

import (
	"fmt"
	"strings"
)

// UnknownReferentError reports a referent key that does not resolve to any
// record in the supplied collection. This is malformed input: the export
// aborts rather than emit a row the Initializer cannot resolve.
type UnknownReferentError struct {
	// Key is the referent value that failed to resolve.
	Key string
	// Referrer is the key of the record naming it, empty when the lookup
	// was for a traversal root rather than a referent.
	Referrer string
}

func (e *UnknownReferentError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("no record with key %q", e.Key)
	}
	return fmt.Sprintf("record %q refers to %q, which does not exist in the collection", e.Referrer, e.Key)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *UnknownReferentError) Is(target error) bool {
	_, ok := target.(*UnknownReferentError)
	return ok
}

// CycleError reports every reference cycle found in a collection. A cycle
// makes dependency ordering impossible, so the export stops; listing all
// cycles at once lets the operator fix every offending concept in one pass
// instead of re-running the export after each fix.
type CycleError struct {
	// Cycles holds one arrow-joined description per distinct cycle.
	Cycles []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycles detected, no legal load order exists:\n\t%s",
		strings.Join(e.Cycles, "\n\t"))
}

// Is allows errors.Is() to work with wrapped errors.
func (e *CycleError) Is(target error) bool {
	_, ok := target.(*CycleError)
	return ok
}
