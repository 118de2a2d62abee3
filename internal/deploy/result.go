package deploy

// EnsureStatus reports what an ensure call actually did.
type EnsureStatus string

// Every reconciler ensure call returns exactly one of these. Calling
// ensure twice with identical desired input and no external drift yields
// StatusUnchanged both times after the first StatusCreated.
const (
	StatusCreated   EnsureStatus = "created"
	StatusUpdated   EnsureStatus = "updated"
	StatusUnchanged EnsureStatus = "unchanged"
)

// EnsureResult pairs the identity of a converged resource with what the
// reconciler had to do to converge it.
type EnsureResult[T any] struct {
	Identity T
	Status   EnsureStatus
}

// created wraps an identity in a StatusCreated result.
func created[T any](id T) EnsureResult[T] {
	return EnsureResult[T]{Identity: id, Status: StatusCreated}
}

// updated wraps an identity in a StatusUpdated result.
func updated[T any](id T) EnsureResult[T] {
	return EnsureResult[T]{Identity: id, Status: StatusUpdated}
}

// unchanged wraps an identity in a StatusUnchanged result.
func unchanged[T any](id T) EnsureResult[T] {
	return EnsureResult[T]{Identity: id, Status: StatusUnchanged}
}

// mergeStatus combines the statuses of sub-steps into the status of the
// whole ensure: any create wins, then any update, else unchanged.
func mergeStatus(statuses ...EnsureStatus) EnsureStatus {
	merged := StatusUnchanged
	for _, s := range statuses {
		switch s {
		case StatusCreated:
			return StatusCreated
		case StatusUpdated:
			merged = StatusUpdated
		}
	}
	return merged
}

// ResourceRecord is one previously created resource read back from the
// tag inventory. Records are used for cleanup and status only; convergence
// always re-reads live resource state.
type ResourceRecord struct {
	ARN  string
	Type string
	Tags map[string]string
}

// Handler returns the owning handler name from the record's tags, or the
// empty string for shared resources.
func (r ResourceRecord) Handler() string {
	return r.Tags[TagKeyHandler]
}
