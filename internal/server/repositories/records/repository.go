// Package records declares the server-side repository contract for synced
// user records.
package records

import "context"

// Repository stores opaque record payloads keyed by the client-side record
// identity. The same client record always maps to the same server row, which
// is what makes replayed deliveries harmless.
type Repository interface {
	// Upsert inserts or replaces the record identified by
	// (userID, tableName, recordID) and returns the server-assigned
	// remote id. Re-upserting the same identity keeps the same remote id.
	Upsert(ctx context.Context, userID, tableName, recordID string, payload []byte) (string, error)

	// Delete removes the record addressed by remoteID, scoped to userID.
	// Absent records yield common.ErrNotFound.
	Delete(ctx context.Context, userID, remoteID string) error
}
