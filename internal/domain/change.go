package domain

// ChangeKind distinguishes detected snapshot transitions
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeModified
)

// String returns the kind identifier: "added", "removed", "modified"
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// FieldChange carries the before/after pair for one compared field of a
// modified record.
type FieldChange struct {
	Name   string
	Before string
	After  string
}

// Change is one detected difference between two snapshots of the same
// resource. Changes are transient: they are computed per transition,
// handed to the notification sink, and discarded.
type Change struct {
	Kind   ChangeKind
	Key    string        // Record identity
	Fields []FieldChange // Populated for modified records only
}

// Notifier receives the change set computed on each successful fetch
// where differences were detected. Implementations decide how to
// surface them; the synchronizer never renders anything itself.
type Notifier interface {
	Notify(resource ResourceKey, changes []Change)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(resource ResourceKey, changes []Change)

func (f NotifierFunc) Notify(resource ResourceKey, changes []Change) { f(resource, changes) }
