package models

import "time"

// Operation is the kind of remote mutation a queue entry owes.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// SyncQueueEntry is one outstanding local mutation awaiting delivery.
// At most one effective entry exists per (TableName, RecordID); a later
// operation supersedes rather than stacks.
//
// RemoteID is captured at enqueue time for deletes: by the time the queue
// executes, the local row is already gone.
type SyncQueueEntry struct {
	ID        int64
	TableName string
	RecordID  string
	Operation Operation
	RemoteID  *string
	Attempts  int
	CreatedAt time.Time
}

// MergeOperations applies the outbox superseding rules when a new operation
// arrives for a record that already has a queued entry. It returns the
// operation the single remaining entry should carry, or keep=false when the
// two cancel out (insert followed by delete: the backend never saw the
// record, so nothing is owed).
func MergeOperations(existing, incoming Operation) (merged Operation, keep bool) {
	if incoming == OpDelete {
		if existing == OpInsert {
			return "", false
		}
		return OpDelete, true
	}
	// insert+update collapses to insert: the record row itself carries
	// current state, the queue only tracks that a sync is owed.
	if existing == OpInsert {
		return OpInsert, true
	}
	return incoming, true
}
