// Package services implements the engine's use cases on top of the local
// repositories and the remote document store.
//
// Every mutation follows the same discipline: the local write commits first
// and is authoritative; the remote write is best effort. A failed remote
// write never fails the operation, it only changes the reported Outcome and
// leaves the record for the reconciliation sweep.
package services

// Outcome reports how far a mutation travelled.
type Outcome int

const (
	// OutcomePropagated: the local write committed and the remote mirror
	// confirmed the write.
	OutcomePropagated Outcome = iota

	// OutcomeDeferred: the local write committed but the remote write failed
	// or was skipped; the record stays unsynced until a sweep retries it.
	OutcomeDeferred
)

func (o Outcome) String() string {
	switch o {
	case OutcomePropagated:
		return "propagated"
	case OutcomeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}
