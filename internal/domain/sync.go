package domain

// Operation represents the kind of filesystem mutation performed by a sync
type Operation string

const (
	// OpMaterialize indicates a file or directory was created or updated
	OpMaterialize Operation = "materialize"

	// OpDelete indicates a file was removed
	OpDelete Operation = "delete"
)

// IsValid checks if the operation is a known value
func (o Operation) IsValid() bool {
	switch o {
	case OpMaterialize, OpDelete:
		return true
	}
	return false
}

// ChangeKind qualifies a materialize operation
type ChangeKind string

const (
	// ChangeAdded indicates the physical path did not exist before
	ChangeAdded ChangeKind = "added"

	// ChangeUpdated indicates the physical path existed and was rewritten
	ChangeUpdated ChangeKind = "updated"
)

// SyncEntry is an immutable record of a single filesystem mutation.
// Entries are never modified after being appended to a SyncResult.
type SyncEntry struct {
	// AggregatePath is the logical path of the node that was synced
	AggregatePath string

	// FsPath is the absolute physical path that was mutated
	FsPath string

	// Op is the kind of mutation
	Op Operation

	// Change qualifies materialize operations (empty for deletes)
	Change ChangeKind
}

// SyncResult is the ordered, append-only record of every filesystem
// mutation performed during a sync invocation. Order of addition is the
// order the mutations were observed on disk and must be preserved.
type SyncResult struct {
	entries []SyncEntry
}

// NewSyncResult creates an empty result log
func NewSyncResult() *SyncResult {
	return &SyncResult{}
}

// AddEntry appends a mutation record. No deduplication, no reordering.
func (r *SyncResult) AddEntry(aggregatePath, fsPath string, op Operation, change ChangeKind) {
	r.entries = append(r.entries, SyncEntry{
		AggregatePath: aggregatePath,
		FsPath:        fsPath,
		Op:            op,
		Change:        change,
	})
}

// Entries returns a copy of the recorded entries in addition order
func (r *SyncResult) Entries() []SyncEntry {
	out := make([]SyncEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries
func (r *SyncResult) Len() int {
	return len(r.entries)
}

// Stats returns summary counts over the recorded entries
func (r *SyncResult) Stats() SyncStats {
	var s SyncStats
	for _, e := range r.entries {
		switch e.Op {
		case OpMaterialize:
			s.Materialized++
			if e.Change == ChangeAdded {
				s.Added++
			} else {
				s.Updated++
			}
		case OpDelete:
			s.Deleted++
		}
	}
	return s
}

// SyncStats provides summary statistics for a sync result
type SyncStats struct {
	Materialized int
	Added        int
	Updated      int
	Deleted      int
}
